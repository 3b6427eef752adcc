package multipart_test

import (
	"strings"

	"github.com/aqasend/aqasend/multipart"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

const boundary = "AaB03x"

func formBody(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("--")
		b.WriteString(boundary)
		b.WriteString("\r\n")
		b.WriteString(p)
	}
	b.WriteString("--")
	b.WriteString(boundary)
	b.WriteString("--\r\n")
	return b.String()
}

func readAllParts(r *multipart.Reader) ([]*multipart.Part, [][]byte) {
	var parts []*multipart.Part
	var bodies [][]byte
	for {
		p, err := r.ReadHeader()
		Expect(err).NotTo(HaveOccurred())
		if p == nil {
			break
		}
		body, err := r.ReadAllChunks()
		Expect(err).NotTo(HaveOccurred())
		parts = append(parts, p)
		bodies = append(bodies, body)
	}
	Expect(r.Done()).To(BeTrue())
	return parts, bodies
}

var _ = Describe("Reader", func() {
	It("parses a single text field", func() {
		body := formBody(
			"Content-Disposition: form-data; name=\"visibility\"\r\n\r\nPublic\r\n",
		)
		r := multipart.New(boundary, 0)
		Expect(r.Feed([]byte(body))).To(Succeed())

		parts, bodies := readAllParts(r)
		Expect(parts).To(HaveLen(1))
		Expect(parts[0].Name).To(Equal("visibility"))
		Expect(string(bodies[0])).To(Equal("Public"))
	})

	It("parses a file part with a filename and content type", func() {
		body := formBody(
			"Content-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\n" +
				"Content-Type: text/plain\r\n\r\nhello world\r\n",
		)
		r := multipart.New(boundary, 0)
		Expect(r.Feed([]byte(body))).To(Succeed())

		parts, bodies := readAllParts(r)
		Expect(parts).To(HaveLen(1))
		Expect(parts[0].Filename).To(Equal("a.txt"))
		Expect(parts[0].ContentType).To(Equal("text/plain"))
		Expect(string(bodies[0])).To(Equal("hello world"))
	})

	It("parses multiple parts in order", func() {
		body := formBody(
			"Content-Disposition: form-data; name=\"a\"\r\n\r\n1\r\n",
			"Content-Disposition: form-data; name=\"b\"\r\n\r\n2\r\n",
		)
		r := multipart.New(boundary, 0)
		Expect(r.Feed([]byte(body))).To(Succeed())

		parts, bodies := readAllParts(r)
		Expect(parts).To(HaveLen(2))
		Expect(parts[0].Name).To(Equal("a"))
		Expect(string(bodies[0])).To(Equal("1"))
		Expect(parts[1].Name).To(Equal("b"))
		Expect(string(bodies[1])).To(Equal("2"))
	})

	It("tolerates the body being fed one byte at a time", func() {
		body := formBody(
			"Content-Disposition: form-data; name=\"file\"; filename=\"big.bin\"\r\n\r\n" +
				strings.Repeat("x", 500) + "\r\n",
		)
		r := multipart.New(boundary, 0)

		for i := 0; i < len(body); i++ {
			Expect(r.Feed([]byte{body[i]})).To(Succeed())
		}

		parts, bodies := readAllParts(r)
		Expect(parts).To(HaveLen(1))
		Expect(bodies[0]).To(HaveLen(500))
	})

	It("rejects a part missing Content-Disposition", func() {
		body := formBody("Content-Type: text/plain\r\n\r\nnope\r\n")
		r := multipart.New(boundary, 0)
		Expect(r.Feed([]byte(body))).To(Succeed())

		_, err := r.ReadHeader()
		Expect(err).To(HaveOccurred())
		merr, ok := err.(*multipart.Error)
		Expect(ok).To(BeTrue())
		Expect(merr.Kind).To(Equal(multipart.KindContentDispositionInvalidFormat))
	})

	It("rejects a Content-Disposition without a name", func() {
		body := formBody("Content-Disposition: form-data; filename=\"a.txt\"\r\n\r\nbody\r\n")
		r := multipart.New(boundary, 0)
		Expect(r.Feed([]byte(body))).To(Succeed())

		_, err := r.ReadHeader()
		Expect(err).To(HaveOccurred())
		merr, ok := err.(*multipart.Error)
		Expect(ok).To(BeTrue())
		Expect(merr.Kind).To(Equal(multipart.KindNameNotFound))
	})

	It("reports TooBig once the configured cap is exceeded", func() {
		r := multipart.New(boundary, 8)
		err := r.Feed([]byte("0123456789"))
		Expect(err).To(HaveOccurred())
		merr, ok := err.(*multipart.Error)
		Expect(ok).To(BeTrue())
		Expect(merr.Kind).To(Equal(multipart.KindTooBig))
	})

	It("does not truncate a body that contains the bare boundary bytes without a preceding CRLF", func() {
		body := formBody(
			"Content-Disposition: form-data; name=\"file\"; filename=\"x.bin\"\r\n\r\n" +
				"lead-in--" + boundary + "-embedded\r\n",
		)
		r := multipart.New(boundary, 0)
		Expect(r.Feed([]byte(body))).To(Succeed())

		parts, bodies := readAllParts(r)
		Expect(parts).To(HaveLen(1))
		Expect(string(bodies[0])).To(Equal("lead-in--" + boundary + "-embedded"))
	})

	It("rejects leading garbage before a genuine boundary instead of skipping it", func() {
		r := multipart.New(boundary, 0)
		Expect(r.Feed([]byte("enough garbage bytes to clear the fill threshold--" + boundary + "\r\n"))).To(Succeed())

		_, err := r.ReadHeader()
		Expect(err).To(HaveOccurred())
		merr, ok := err.(*multipart.Error)
		Expect(ok).To(BeTrue())
		Expect(merr.Kind).To(Equal(multipart.KindBoundaryExpected))
	})

	It("asks for more data instead of failing on a header split across Feed calls", func() {
		r := multipart.New(boundary, 0)
		full := formBody("Content-Disposition: form-data; name=\"x\"\r\n\r\nval\r\n")
		head, tail := full[:10], full[10:]

		Expect(r.Feed([]byte(head))).To(Succeed())
		_, err := r.ReadHeader()
		merr, ok := err.(*multipart.Error)
		Expect(ok).To(BeTrue())
		Expect(merr.Kind).To(Equal(multipart.KindNotEnoughData))

		Expect(r.Feed([]byte(tail))).To(Succeed())
		part, err := r.ReadHeader()
		Expect(err).NotTo(HaveOccurred())
		Expect(part.Name).To(Equal("x"))
	})
})
