package telegram

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"overdue_followup_bot/internal/app/overduelist"
	"overdue_followup_bot/internal/domain/download"
	idb "overdue_followup_bot/internal/infra/database"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) Check(ctx context.Context) error { return f(ctx) }

var _ = Describe("overdue callbacks", func() {
	Describe("parseFormatPayload", func() {
		It("round-trips download and share payloads", func() {
			ev, err := parseFormatPayload(formatPayload(overduelist.PurposeDownload, download.FormatPDF))
			Expect(err).ToNot(HaveOccurred())
			Expect(ev).To(Equal(overduelist.DownloadFormatSelected{Format: download.FormatPDF}))

			ev, err = parseFormatPayload(formatPayload(overduelist.PurposeShare, download.FormatCSV))
			Expect(err).ToNot(HaveOccurred())
			Expect(ev).To(Equal(overduelist.ShareFormatSelected{Format: download.FormatCSV}))
		})

		DescribeTable("rejects malformed payloads",
			func(payload string) {
				_, err := parseFormatPayload(payload)
				Expect(err).To(MatchError(errBadCallback))
			},
			Entry("no separator", "downloadCSV"),
			Entry("unknown format", "download:XLS"),
			Entry("unknown purpose", "print:CSV"),
			Entry("empty", ""),
		)
	})

	Describe("parsePatientPayload", func() {
		It("parses a patient id", func() {
			id := uuid.New()
			parsed, err := parsePatientPayload(id.String())
			Expect(err).ToNot(HaveOccurred())
			Expect(parsed).To(Equal(id))
		})

		It("rejects garbage", func() {
			_, err := parsePatientPayload("patient-1")
			Expect(err).To(MatchError(errBadCallback))
		})
	})

	Describe("networkStatus", func() {
		ctx := context.Background()

		It("is unknown without a checker", func() {
			Expect(networkStatus(ctx, nil)).To(Equal(overduelist.NetworkUnknown))
		})

		It("is active when the check passes", func() {
			Expect(networkStatus(ctx, checkerFunc(func(context.Context) error { return nil }))).To(Equal(overduelist.NetworkActive))
		})

		It("is unknown when the check times out", func() {
			checker := checkerFunc(func(context.Context) error { return idb.ErrConnectivityUndetermined })
			Expect(networkStatus(ctx, checker)).To(Equal(overduelist.NetworkUnknown))
		})

		It("is inactive when the check fails", func() {
			checker := checkerFunc(func(context.Context) error { return errors.New("connection refused") })
			Expect(networkStatus(ctx, checker)).To(Equal(overduelist.NetworkInactive))
		})
	})
})
