package completion_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/neurocura/neurocura/pkg/completion"
)

var _ = Describe("Gemini", func() {
	var gemini *completion.Gemini

	BeforeEach(func() {
		gemini = completion.NewGemini(completion.GeminiConfig{
			Model: "gemini-1.5-flash",
			Params: completion.GenerationParams{
				Temperature:     1,
				TopP:            0.95,
				TopK:            64,
				MaxOutputTokens: 8192,
			},
		}, zap.NewNop())
	})

	It("fails with an API error when the key is missing", func() {
		GinkgoT().Setenv(completion.EnvAPIKey, "")

		_, err := gemini.Complete(context.Background(), []completion.Message{
			{Role: completion.RoleUser, Content: "What is dementia?"},
		})

		var cerr *completion.Error
		Expect(errors.As(err, &cerr)).To(BeTrue())
		Expect(cerr.Kind).To(Equal(completion.KindAPI))
	})

	It("fails with an API error for an empty context", func() {
		_, err := gemini.Complete(context.Background(), nil)

		var cerr *completion.Error
		Expect(errors.As(err, &cerr)).To(BeTrue())
		Expect(cerr.Kind).To(Equal(completion.KindAPI))
	})
})
