package main_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/getkin/kin-openapi/openapi3"
)

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()

		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should be a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("should describe the whole API surface", func() {
		for _, path := range []string{
			"/auth/login",
			"/auth/google",
			"/auth/signup",
			"/auth/refresh",
			"/users/me",
			"/users/{id}/role",
			"/users/{id}/permissions",
			"/transactions",
			"/transactions/bulk",
			"/transactions/watch",
			"/notes/shared/{id}",
			"/receipts/{id}/drive",
			"/documents",
			"/notifications",
			"/export/transactions",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("should require a bearer token on protected routes", func() {
		item := doc.Paths.Find("/transactions")
		Expect(item).NotTo(BeNil())
		Expect(item.Get.Security).NotTo(BeNil())
		Expect(*item.Get.Security).NotTo(BeEmpty())
	})
})
