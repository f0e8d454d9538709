package infrastructure_test

import (
	"strings"

	. "chatdesk/internal/infrastructure"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Argon2Hasher", func() {
	var hasher *Argon2Hasher

	BeforeEach(func() {
		hasher = NewArgon2Hasher(Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	})

	It("verifies the password it hashed", func() {
		encoded, err := hasher.Hash("correct horse battery staple")
		Expect(err).ToNot(HaveOccurred())
		Expect(encoded).To(HavePrefix("$argon2id$v=19$m=1024,t=1,p=1$"))
		Expect(hasher.Verify("correct horse battery staple", encoded)).To(BeTrue())
	})

	It("rejects a mutated password", func() {
		encoded, err := hasher.Hash("s3cret-pass")
		Expect(err).ToNot(HaveOccurred())
		Expect(hasher.Verify("s3cret-pasS", encoded)).To(BeFalse())
		Expect(hasher.Verify("", encoded)).To(BeFalse())
	})

	It("salts every hash", func() {
		a, _ := hasher.Hash("same")
		b, _ := hasher.Hash("same")
		Expect(a).ToNot(Equal(b))
	})

	It("verifies hashes made with other parameters", func() {
		other := NewArgon2Hasher(Argon2Params{Memory: 2048, Iterations: 2, Parallelism: 2, SaltLength: 8, KeyLength: 16})
		encoded, err := other.Hash("pw")
		Expect(err).ToNot(HaveOccurred())
		Expect(hasher.Verify("pw", encoded)).To(BeTrue())
	})

	DescribeTable("returns false for malformed input",
		func(encoded string) {
			Expect(hasher.Verify("pw", encoded)).To(BeFalse())
		},
		Entry("empty", ""),
		Entry("bcrypt", "$2b$12$abcdefghijklmnopqrstuuJ5x7b7v1u7jU6Z1x0xYc5bR8S9m1e2"),
		Entry("unknown variant", "$argon2d$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g"),
		Entry("bad version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g"),
		Entry("bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g"),
		Entry("huge memory", "$argon2id$v=19$m=99999999,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g"),
		Entry("bad base64", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaGhhc2g"),
		Entry("missing hash", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ"),
	)

	It("encodes salt and key without padding", func() {
		encoded, _ := hasher.Hash("pw")
		Expect(strings.Contains(encoded, "=$")).To(BeFalse())
		Expect(strings.HasSuffix(encoded, "=")).To(BeFalse())
	})
})
