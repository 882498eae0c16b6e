package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/Veraticus/crosscheck/internal/dataset"
	"github.com/Veraticus/crosscheck/internal/sheets"
)

// CatalogTab is the title of the issuer catalog.
const CatalogTab = "Catalogo"

var catalogHeader = []any{
	"payment_id", "local", "cliente", "fecha", "proveedor", "servicio",
	"subtotal_ítem", "", "emisor", "rut_emisor", "subtotal_dte",
}

// catalogEntry is one booking line item or one tax document of a payment.
type catalogEntry struct {
	paymentID string
	sortKey   string
	booking   dataset.Row
	document  dataset.Row
}

// catalogEntries merges bookings and documents and orders them by
// payment_id-provider descending, so each payment's bookings and documents
// form one contiguous group.
func catalogEntries(bookings, documents *dataset.Dataset) []catalogEntry {
	var (
		bPayment  = dataset.Bookings.MustIndex("payment_id")
		bProvider = dataset.Bookings.MustIndex("provider_name")
		dPayment  = dataset.Documents.MustIndex("payment_id")
	)

	entries := make([]catalogEntry, 0, bookings.Len()+documents.Len())
	for _, row := range bookings.Rows {
		pid := row.Text(bPayment)
		entries = append(entries, catalogEntry{
			paymentID: pid,
			sortKey:   pid + "-" + row.Text(bProvider),
			booking:   row,
		})
	}
	for _, row := range documents.Rows {
		pid := row.Text(dPayment)
		entries = append(entries, catalogEntry{
			paymentID: pid,
			sortKey:   pid + "-",
			document:  row,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].sortKey > entries[j].sortKey
	})
	return entries
}

// catalogValues lays out the catalog. Each payment gets a header row, its
// line items, and a "Total ítems" row summing the item subtotals of exactly
// those lines.
func catalogValues(entries []catalogEntry) [][]any {
	var (
		bLocation = dataset.Bookings.MustIndex("location")
		bClient   = dataset.Bookings.MustIndex("client_name")
		bStart    = dataset.Bookings.MustIndex("booking_start_time")
		bProvider = dataset.Bookings.MustIndex("provider_name")
		bService  = dataset.Bookings.MustIndex("service_name")
		bPrice    = dataset.Bookings.MustIndex("booking_price")
		dIssuer   = dataset.Documents.MustIndex("emisor_nombre")
		dRut      = dataset.Documents.MustIndex("emisor_rut")
		dAmount   = dataset.Documents.MustIndex("monto")
	)

	values := [][]any{catalogHeader}
	firstLine := 0
	for i, e := range entries {
		if i == 0 || e.paymentID != entries[i-1].paymentID {
			// location and client come from the booking, if the group starts with one
			values = append(values, []any{e.paymentID, e.booking.Text(bLocation), e.booking.Text(bClient)})
			firstLine = len(values) + 1
		}

		if e.booking != nil {
			values = append(values, []any{
				"", "", "",
				e.booking.Text(bStart),
				e.booking.Text(bProvider),
				e.booking.Text(bService),
				e.booking.Text(bPrice),
			})
		} else {
			values = append(values, []any{
				"", "", "", "", "", "", "", "",
				e.document.Text(dIssuer),
				e.document.Text(dRut),
				e.document.Text(dAmount),
			})
		}

		if i+1 == len(entries) || entries[i+1].paymentID != e.paymentID {
			values = append(values, []any{
				"", "", "", "", "", "Total ítems",
				fmt.Sprintf("=SUM(G%d:G%d)", firstLine, len(values)),
			})
		}
	}
	return values
}

// catalog writes the issuer catalog tab.
func (b *builder) catalog(ctx context.Context, bookings, documents *dataset.Dataset) {
	b.logger.Info("building tab", "tab", CatalogTab)

	values := catalogValues(catalogEntries(bookings, documents))

	if _, ok := b.ensure(ctx, StageCatalog, CatalogTab); !ok {
		return
	}
	if err := b.api.Write(ctx, sheets.Cell{Tab: CatalogTab, Row: 1}, values, sheets.UserEntered); err != nil {
		b.summary.fail(StageCatalog, CatalogTab, err)
		return
	}
	b.summary.succeed(StageCatalog, CatalogTab, len(values)-1)
}
