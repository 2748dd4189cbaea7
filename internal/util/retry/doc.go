// Package retry retries context-aware operations with a bounded number of
// attempts and exponential backoff between them.
//
// [Do] is used for the control-plane status push, where a short retry budget
// rides out brief API hiccups without stalling a reconciliation pass.
// Errors wrapped with [Fatal] stop the loop immediately.
package retry
