package store_test

import (
	"time"

	"github.com/aqasend/aqasend/account"
	"github.com/aqasend/aqasend/store"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("DB entries", func() {
	var db *store.DB

	BeforeEach(func() {
		db = store.New()
	})

	It("returns not-found for a missing uuid", func() {
		_, ok := db.Get(uuid.New())
		Expect(ok).To(BeFalse())
	})

	It("round-trips a put entry as a clone", func() {
		id := uuid.New()
		entry := &store.FileEntry{
			Filename:          "sample_file",
			ContentType:       "application/octet-stream",
			DownloadCountType: store.DownloadCountType{Kind: store.Count, Max: 1},
			Visibility:        store.Public,
			Lifetime:          store.Lifetime{Kind: store.LifetimeInfinite},
			UploadDate:        time.Now(),
		}
		db.Put(id, entry)

		got, ok := db.Get(id)
		Expect(ok).To(BeTrue())
		Expect(got.Filename).To(Equal("sample_file"))
		Expect(got).NotTo(BeIdenticalTo(entry))
	})

	It("fails Update when the uuid is absent", func() {
		err := db.Update(uuid.New(), &store.FileEntry{})
		Expect(err).To(Equal(store.ErrUpdateFail))
	})

	It("reports Exhausted once DownloadCount reaches the bound", func() {
		e := &store.FileEntry{DownloadCountType: store.DownloadCountType{Kind: store.Count, Max: 1}}
		Expect(e.Exhausted()).To(BeFalse())
		e.DownloadCount = 1
		Expect(e.Exhausted()).To(BeTrue())
	})

	It("reports Expired once the lifetime elapses", func() {
		e := &store.FileEntry{
			Lifetime:   store.Lifetime{Kind: store.LifetimeDuration, Duration: time.Hour},
			UploadDate: time.Now().Add(-2 * time.Hour),
		}
		Expect(e.Expired(time.Now())).To(BeTrue())
	})
})

var _ = Describe("DB accounts", func() {
	var db *store.DB

	BeforeEach(func() {
		db = store.New()
	})

	It("adds an account and its username index entry atomically", func() {
		id := uuid.New()
		acc := account.Account{UUID: id, Username: "ala", PasswordHash: "x", AccType: account.Admin}
		Expect(db.AddAccount(id, acc)).To(Succeed())

		got, ok := db.GetAccount(id)
		Expect(ok).To(BeTrue())
		Expect(got.Username).To(Equal("ala"))

		view, release := db.AccountUUIDsReader()
		defer release()
		indexedID, ok := view.Get("ala")
		Expect(ok).To(BeTrue())
		Expect(indexedID).To(Equal(id))
	})

	It("rejects adding an account whose uuid already exists", func() {
		id := uuid.New()
		acc := account.Account{UUID: id, Username: "ala"}
		Expect(db.AddAccount(id, acc)).To(Succeed())
		err := db.AddAccount(id, acc)
		Expect(err).To(Equal(store.ErrAccountAlreadyExists))
	})
})
