package multipart_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestMultipart(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "multipart suite")
}
