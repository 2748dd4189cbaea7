package k8sclient

import (
	"errors"
	"fmt"
	"net/http"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// StoreError is a failed Kubernetes API call.
type StoreError struct {
	Op         string
	Kind       string
	Name       string
	Namespace  string
	StatusCode int
	Reason     metav1.StatusReason
	Body       string
	Err        error
}

func (e *StoreError) Error() string {
	target := e.Kind + " " + e.Name
	if e.Namespace != "" {
		target = e.Kind + " " + e.Namespace + "/" + e.Name
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
	}
	return fmt.Sprintf("%s %s: %s (status %d): %s", e.Op, target, e.Reason, e.StatusCode, e.Body)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func newStoreError(op string, ref Ref, err error) *StoreError {
	se := &StoreError{
		Op:        op,
		Kind:      ref.Kind,
		Name:      ref.Name,
		Namespace: ref.Namespace,
		Err:       err,
	}

	var status apierrors.APIStatus
	if errors.As(err, &status) {
		s := status.Status()
		se.StatusCode = int(s.Code)
		se.Reason = s.Reason
		se.Body = s.Message
	}
	return se
}

// IsNotFound reports whether err is a 404 from the API server.
func IsNotFound(err error) bool {
	var se *StoreError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return true
	}
	return apierrors.IsNotFound(err)
}
