// Package prints hands pending offer prints over to the printer. Each export
// flips the prints it selects to exported, so a print lands in one file only
// and starts counting toward the client's mails.
package prints

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"directMail/business"
	"directMail/domain"
	"directMail/pkg/logger"
)

type ExportInput struct {
	OfferID         uint64
	BrandID         *uint64
	ReturnAddressID *uint64
	PayeeNameID     *uint64
	Printer         string
	Date            time.Time
	Past            bool
}

type Export struct {
	FileName string               `json:"file_name"`
	Rows     []domain.PrintExport `json:"rows"`
	// Skipped counts blacklisted clients whose prints were retired unsent.
	Skipped int `json:"skipped"`
}

type PrintsService struct {
	store business.Store
	clock business.Clock
}

func NewPrintsService(store business.Store, clock business.Clock) *PrintsService {
	return &PrintsService{store: store, clock: clock}
}

// ExportPrints takes every pending print of one offer, routing and mail day.
// Prints of blacklisted clients are marked exported too but left out of the
// file, except for client-services offers which reach every client.
func (s *PrintsService) ExportPrints(ctx context.Context, in ExportInput) (Export, error) {
	if err := ctx.Err(); err != nil {
		return Export{}, fmt.Errorf("context error: %w", err)
	}
	if in.OfferID == 0 {
		return Export{}, domain.ErrMissingRequiredData.WithMessage("offer id is required")
	}
	if in.Date.IsZero() {
		in.Date = s.clock.Now()
	}

	var out Export
	err := s.store.Transaction(ctx, func(tx business.Repos) error {
		offer, err := tx.Offers().FindByID(ctx, in.OfferID)
		if err != nil {
			return err
		}

		rows, err := tx.Prints().ExportPending(ctx, business.ExportFilter{
			OfferID:         in.OfferID,
			BrandID:         in.BrandID,
			ReturnAddressID: in.ReturnAddressID,
			PayeeNameID:     in.PayeeNameID,
			Printer:         in.Printer,
			Date:            in.Date,
			Past:            in.Past,
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return domain.ErrNoPrintsToExport
		}

		out = Export{FileName: fmt.Sprintf("%s_%s.csv", offer.Title, domain.Today(in.Date).Format(time.DateOnly))}
		for _, row := range rows {
			if row.IsBlacklisted && offer.Type != domain.OfferTypeClientServices {
				out.Skipped++
				continue
			}
			out.Rows = append(out.Rows, row)
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to export prints", "offer_id", in.OfferID, err)
		return Export{}, err
	}

	PrintsExportedTotal.WithLabelValues("exported").Add(float64(len(out.Rows)))
	PrintsExportedTotal.WithLabelValues("skipped").Add(float64(out.Skipped))
	logger.Info("prints exported", "offer_id", in.OfferID, "rows", len(out.Rows), "skipped", out.Skipped)
	return out, nil
}

var csvHeader = []string{
	"data_entry_code", "campaign_code", "mail_date", "client_id", "gender",
	"first_name", "last_name", "phone", "city", "state", "zip_code", "country",
}

// WriteCSV writes rows as a printer file with a header line.
func WriteCSV(w io.Writer, rows []domain.PrintExport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.OfferCode, r.CampaignCode, r.MailDate.Format(time.DateOnly), strconv.FormatUint(r.ClientID, 10),
			r.Gender, r.FirstName, r.LastName, r.Phone, r.City, r.State, r.ZipCode, r.Country,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
