package invoice

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Runner", func() {
	var (
		extractor *mockExtractor
		jobs      *JobStore
		events    *EventLog
		runner    *Runner
		job       *Job
	)

	BeforeEach(func() {
		extractor = newMockExtractor()
		jobs = NewJobStore()
		events = NewEventLog()
		runner = NewRunner(jobs, extractor, NewDispatcher(NewRegistry(), events))

		var err error
		job, err = jobs.Create()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Process", func() {
		When("the extraction succeeds", func() {
			BeforeEach(func() {
				runner.Process(job.ID, []byte("image"), "image/png")
			})

			It("should complete the job with the result", func() {
				stored, ok := jobs.Get(job.ID)
				Expect(ok).To(BeTrue())
				Expect(stored.Status).To(Equal(StatusCompleted))
				Expect(stored.Result).NotTo(BeNil())
				Expect(stored.Error).To(BeEmpty())
			})

			It("should emit a completed event with a success outcome", func() {
				recorded := events.List()
				Expect(recorded).To(HaveLen(1))
				Expect(recorded[0].Event).To(Equal(EventJobCompleted))

				data := recorded[0].Data.(map[string]any)
				Expect(data["jobId"]).To(Equal(job.ID))
				Expect(data["status"]).To(Equal("success"))
			})

			It("should invoke the extractor exactly once", func() {
				Expect(extractor.callCount()).To(Equal(1))
			})
		})

		When("the extraction fails", func() {
			BeforeEach(func() {
				extractor.err = errors.New("upstream rejected the image")
				runner.Process(job.ID, []byte("image"), "image/png")
			})

			It("should fail the job with a non-empty error message", func() {
				stored, ok := jobs.Get(job.ID)
				Expect(ok).To(BeTrue())
				Expect(stored.Status).To(Equal(StatusFailed))
				Expect(stored.Error).To(Equal("upstream rejected the image"))
				Expect(stored.Result).To(BeNil())
			})

			It("should emit a completed event with a failed outcome", func() {
				recorded := events.List()
				Expect(recorded).To(HaveLen(1))

				data := recorded[0].Data.(map[string]any)
				Expect(data["jobId"]).To(Equal(job.ID))
				Expect(data["status"]).To(Equal("failed"))
				Expect(data["error"]).To(Equal("upstream rejected the image"))
			})

			It("should not retry", func() {
				Expect(extractor.callCount()).To(Equal(1))
			})
		})

		When("the job id is unknown", func() {
			It("should not invoke the extractor or emit an event", func() {
				runner.Process("no-such-job", []byte("image"), "image/png")
				Expect(extractor.callCount()).To(BeZero())
				Expect(events.List()).To(BeEmpty())
			})
		})

		When("the job already reached a terminal state", func() {
			BeforeEach(func() {
				runner.Process(job.ID, []byte("image"), "image/png")
			})

			It("should leave the terminal state untouched", func() {
				runner.Process(job.ID, []byte("image"), "image/png")

				stored, _ := jobs.Get(job.ID)
				Expect(stored.Status).To(Equal(StatusCompleted))
				Expect(extractor.callCount()).To(Equal(1))
			})
		})
	})
})
