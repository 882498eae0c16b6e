package dataset

// Staging tab layouts, as produced by the warehouse queries.
var (
	Bookings = Schema{
		Name:    "Citas",
		Version: 1,
		Columns: []string{
			"payment_id", "booking_start_time", "location", "provider_id",
			"provider_name", "booking_id", "booking_price", "booking_status",
			"client_id", "client_name", "service_id", "service_name",
		},
	}

	Documents = Schema{
		Name:    "DTEs",
		Version: 1,
		Columns: []string{
			"vlookup_id", "payment_id", "tready_id", "fecha_emision",
			"tipo_dte", "emisor_rut", "emisor_nombre", "receptor_rut",
			"receptor_nombre", "monto", "folio", "pdf",
		},
	}

	Errors = Schema{
		Name:    "Errores",
		Version: 1,
		Columns: []string{
			"vlookup_id", "payment_id", "updated_at",
			"issuer_identification", "issuer_name", "error",
		},
	}

	Transactions = Schema{
		Name:    "Transacciones",
		Version: 1,
		Columns: []string{
			"payment_id", "transaction_id", "external_reference",
			"amount", "tip", "payment_date",
		},
	}

	Issuers = Schema{
		Name:    "Emisores",
		Version: 1,
		Columns: []string{"issuer_name", "rut"},
	}
)
