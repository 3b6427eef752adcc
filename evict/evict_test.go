package evict_test

import (
	"bytes"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/aqasend/aqasend/blob"
	"github.com/aqasend/aqasend/evict"
	"github.com/aqasend/aqasend/store"
	"github.com/google/uuid"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Engine", func() {
	var (
		db       *store.DB
		blobs    *blob.Store
		engine   *evict.Engine
		root     string
	)

	BeforeEach(func() {
		var err error
		db = store.New()
		root, err = os.MkdirTemp("", "evict-test-")
		Expect(err).NotTo(HaveOccurred())
		blobs = blob.New(root, []string{"1", "infinite"})
		Expect(blobs.EnsureDirs()).To(Succeed())
		engine = evict.New(db, blobs, time.Hour, time.Minute, zap.NewNop(), prometheus.NewRegistry())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(root)).To(Succeed())
	})

	It("evicts an exhausted entry and deletes its blob", func() {
		id := uuid.New()
		db.Put(id, &store.FileEntry{
			Filename:          "a.bin",
			DownloadCountType: store.DownloadCountType{Kind: store.Count, Max: 1},
			DownloadCount:     1,
			Visibility:        store.Public,
			Lifetime:          store.Lifetime{Kind: store.LifetimeInfinite},
			UploadDate:        time.Now(),
		})
		_, err := blobs.CopyFrom("1", id, bytes.NewReader([]byte("x")))
		Expect(err).NotTo(HaveOccurred())

		engine.Sweep()

		_, ok := db.Get(id)
		Expect(ok).To(BeFalse())
		_, err = blobs.Open("1", id)
		Expect(err).To(HaveOccurred())
	})

	It("evicts an expired entry and deletes its blob, unlike the original implementation", func() {
		id := uuid.New()
		db.Put(id, &store.FileEntry{
			Filename:          "b.bin",
			DownloadCountType: store.DownloadCountType{Kind: store.Infinite},
			Visibility:        store.Public,
			Lifetime:          store.Lifetime{Kind: store.LifetimeDuration, Duration: time.Millisecond},
			UploadDate:        time.Now().Add(-time.Hour),
		})
		_, err := blobs.CopyFrom("infinite", id, bytes.NewReader([]byte("x")))
		Expect(err).NotTo(HaveOccurred())

		engine.Sweep()

		_, ok := db.Get(id)
		Expect(ok).To(BeFalse())
		_, err = blobs.Open("infinite", id)
		Expect(err).To(HaveOccurred())
	})

	It("leaves a live entry untouched", func() {
		id := uuid.New()
		db.Put(id, &store.FileEntry{
			Filename:          "c.bin",
			DownloadCountType: store.DownloadCountType{Kind: store.Infinite},
			Visibility:        store.Public,
			Lifetime:          store.Lifetime{Kind: store.LifetimeInfinite},
			UploadDate:        time.Now(),
		})

		engine.Sweep()

		_, ok := db.Get(id)
		Expect(ok).To(BeTrue())
	})
})
