//go:build integration

package k8sclient

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	const ns = "integration-db1"

	It("creates and then updates a namespace", func() {
		obj, err := DecodeManifest([]byte("apiVersion: v1\nkind: Namespace\nmetadata:\n  name: " + ns + "\n"))
		Expect(err).NotTo(HaveOccurred())

		res, err := store.Apply(ctx, obj, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Action).To(Equal(ActionCreated))

		obj, err = DecodeManifest([]byte("apiVersion: v1\nkind: Namespace\nmetadata:\n  name: " + ns + "\n  labels:\n    tier: db\n"))
		Expect(err).NotTo(HaveOccurred())

		res, err = store.Apply(ctx, obj, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Action).To(Equal(ActionUpdated))

		live, err := store.Get(ctx, Ref{Kind: KindNamespace, Name: ns})
		Expect(err).NotTo(HaveOccurred())
		Expect(live.GetLabels()).To(HaveKeyWithValue("tier", "db"))
	})

	It("applies a secret and a service into the namespace", func() {
		secret, err := DecodeManifest([]byte(`apiVersion: v1
kind: Secret
metadata:
  name: clickhouse-cluster-pw
type: Opaque
data:
  username: dXNlcg==
`))
		Expect(err).NotTo(HaveOccurred())

		res, err := store.Apply(ctx, secret, ns)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Namespace).To(Equal(ns))

		svc, err := DecodeManifest([]byte(serviceDoc))
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Apply(ctx, svc, ns)
		Expect(err).NotTo(HaveOccurred())

		_, err = store.Apply(ctx, svc, ns)
		Expect(err).NotTo(HaveOccurred())

		live, err := store.Get(ctx, Ref{Kind: KindSecret, Name: "clickhouse-cluster-pw", Namespace: ns})
		Expect(err).NotTo(HaveOccurred())
		Expect(live).NotTo(BeNil())
	})

	It("reports missing objects without error", func() {
		live, err := store.Get(ctx, Ref{Kind: KindService, Name: "absent", Namespace: ns})
		Expect(err).NotTo(HaveOccurred())
		Expect(live).To(BeNil())

		res, err := store.Delete(ctx, Ref{Kind: KindSecret, Name: "absent", Namespace: ns})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Action).To(Equal(ActionNotFound))
	})

	It("surfaces unknown custom resources as store errors", func() {
		obj, err := DecodeManifest([]byte(chiDoc))
		Expect(err).NotTo(HaveOccurred())

		_, err = store.Apply(ctx, obj, ns)
		Expect(err).To(HaveOccurred())

		var se *StoreError
		Expect(err).To(BeAssignableToTypeOf(se))
		Expect(IsNotFound(err)).To(BeTrue())
	})

	It("deletes the namespace", func() {
		res, err := store.Delete(ctx, Ref{Kind: KindNamespace, Name: ns})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Action).To(Equal(ActionDeleted))
	})
})
