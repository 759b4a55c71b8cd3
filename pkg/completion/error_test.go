package completion_test

import (
	"context"
	"errors"
	"fmt"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/api/googleapi"

	"github.com/neurocura/neurocura/pkg/completion"
)

// timeoutErr satisfies net.Error with Timeout() == true.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ = Describe("Classify", func() {
	It("returns nil for nil", func() {
		Expect(completion.Classify(nil)).To(BeNil())
	})

	It("passes through already-classified errors", func() {
		orig := &completion.Error{Kind: completion.KindAPI, Message: "bad key"}

		Expect(completion.Classify(fmt.Errorf("complete: %w", orig))).To(Equal(orig))
	})

	It("passes through context cancellation untouched", func() {
		err := completion.Classify(context.Canceled)

		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("maps deadline exceeded to a timeout failure", func() {
		err := completion.Classify(context.DeadlineExceeded)

		var cerr *completion.Error
		Expect(errors.As(err, &cerr)).To(BeTrue())
		Expect(cerr.Kind).To(Equal(completion.KindTimeout))
	})

	It("maps googleapi errors to API failures", func() {
		gerr := &googleapi.Error{Code: 400, Message: "API key not valid"}

		err := completion.Classify(gerr)

		var cerr *completion.Error
		Expect(errors.As(err, &cerr)).To(BeTrue())
		Expect(cerr.Kind).To(Equal(completion.KindAPI))
		Expect(cerr.Message).To(Equal("API key not valid"))
	})

	It("maps net timeouts to timeout failures", func() {
		var nerr net.Error = timeoutErr{}

		err := completion.Classify(nerr)

		var cerr *completion.Error
		Expect(errors.As(err, &cerr)).To(BeTrue())
		Expect(cerr.Kind).To(Equal(completion.KindTimeout))
	})

	It("maps everything else to network failures", func() {
		err := completion.Classify(errors.New("connection refused"))

		var cerr *completion.Error
		Expect(errors.As(err, &cerr)).To(BeTrue())
		Expect(cerr.Kind).To(Equal(completion.KindNetwork))
		Expect(cerr.Message).To(Equal("connection refused"))
	})
})

var _ = Describe("Error", func() {
	It("formats the kind and message", func() {
		err := &completion.Error{Kind: completion.KindNetwork, Message: "timed out"}

		Expect(err.Error()).To(Equal("network error: timed out"))
	})
})
