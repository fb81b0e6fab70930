package invoice

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TokenAuth", func() {
	var (
		auth   *TokenAuth
		secret []byte
		now    time.Time
		clock  *stubTimeSource
	)

	BeforeEach(func() {
		secret = []byte("test-signing-secret")
		now = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
		clock = &stubTimeSource{now: now}
		auth = NewTokenAuthWithDeps("admin", "hunter2", secret, clock)
	})

	Describe("Login", func() {
		It("should mint a token for the configured credentials", func() {
			token, err := auth.Login("admin", "hunter2")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())
		})

		It("should reject a wrong password", func() {
			_, err := auth.Login("admin", "wrong")
			Expect(err).To(MatchError(ErrInvalidCredentials))
		})

		It("should reject an unknown username", func() {
			_, err := auth.Login("someone", "hunter2")
			Expect(err).To(MatchError(ErrInvalidCredentials))
		})
	})

	Describe("Verify", func() {
		It("should return the principal for a freshly minted token", func() {
			token, err := auth.Login("admin", "hunter2")
			Expect(err).NotTo(HaveOccurred())

			principal, err := auth.Verify(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(principal).To(Equal("admin"))
		})

		It("should allow reusing the same token within its lifetime", func() {
			token, err := auth.Login("admin", "hunter2")
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 3; i++ {
				principal, err := auth.Verify(token)
				Expect(err).NotTo(HaveOccurred())
				Expect(principal).To(Equal("admin"))
			}
		})

		It("should reject an empty token", func() {
			_, err := auth.Verify("")
			Expect(err).To(MatchError(ErrNoToken))
		})

		It("should reject a garbage token", func() {
			_, err := auth.Verify("not-a-token")
			Expect(err).To(MatchError(ErrInvalidToken))
		})

		It("should reject a token signed with a different secret", func() {
			other := NewTokenAuthWithDeps("admin", "hunter2", []byte("other-secret"), clock)
			token, err := other.Login("admin", "hunter2")
			Expect(err).NotTo(HaveOccurred())

			_, err = auth.Verify(token)
			Expect(err).To(MatchError(ErrInvalidToken))
		})

		When("the token expiry has elapsed", func() {
			It("should reject the token", func() {
				token, err := auth.Login("admin", "hunter2")
				Expect(err).NotTo(HaveOccurred())

				clock.now = now.Add(8*time.Hour + time.Minute)
				_, err = auth.Verify(token)
				Expect(err).To(MatchError(ErrInvalidToken))
			})
		})

		When("the token is just short of expiry", func() {
			It("should accept the token", func() {
				token, err := auth.Login("admin", "hunter2")
				Expect(err).NotTo(HaveOccurred())

				clock.now = now.Add(8*time.Hour - time.Minute)
				principal, err := auth.Verify(token)
				Expect(err).NotTo(HaveOccurred())
				Expect(principal).To(Equal("admin"))
			})
		})
	})
})
