package formula

// Templates are written with ';' argument separators, as the comma-decimal
// spreadsheet locale expects.

var registry = map[Variant]func() Set{
	VariantBasic:    basicSet,
	VariantFallback: fallbackSet,
	VariantPOS:      posSet,
	VariantLedger:   ledgerSet,
	VariantMatrix:   matrixSet,
}

// basicSet groups by provider id (column D) and has no error fallback.
func basicSet() Set {
	return Set{
		FirstColumn: "M",
		FeeColumn:   "S",
		GroupColumn: 3,
		Columns: []Column{
			{"id-vlookup1", `=IF(L@@<>""; CONCAT(L@@;CONCAT("-";VLOOKUP(D@@;Emisores!$A$1:$B$30;2;FALSE)));"")`},
			{"id-boleta", `=IF(M@@<>""; HYPERLINK(VLOOKUP(M@@;DTEs!A:L;12;FALSE);VLOOKUP(M@@;DTEs!A:L;11;FALSE));"")`},
			{"largo-rut", `=IF(M@@<>""; LEN(VLOOKUP(M@@;DTEs!A:L;6;FALSE))-2;"")`},
			{"folio", `=IF(M@@<>""; INT(LEFT(RIGHT(N@@;LEN(N@@)-O@@);5));"")`},
			{"monto-boleta", `=IF(M@@<>""; VLOOKUP(M@@;DTEs!A:L;10;FALSE);"")`},
			{"monto-servicios", `=IF(M@@<>""; CEILING(SUMIFS(F:F;L:L;L@@));"")`},
			{"valor", `=IFERROR(Q@@/R@@;"")`},
		},
	}
}

// fallbackSet groups by provider name (column E) and falls back to the
// issuer error log when no document exists.
func fallbackSet() Set {
	return Set{
		FirstColumn: "M",
		FeeColumn:   "S",
		GroupColumn: 4,
		Columns: []Column{
			{"id-vlookup1", `=IF(A@@<>""; CONCAT(A@@;CONCAT("-";VLOOKUP(E@@;Emisores!$A$1:$B$100;2;FALSE)));"")`},
			{"id-boleta", `=IF(M@@<>""; IFERROR(HYPERLINK(VLOOKUP(M@@;DTEs!A:L;12;FALSE);VLOOKUP(M@@;DTEs!A:L;11;FALSE)); IFERROR(VLOOKUP(CONCAT(CONCAT(A@@;"-");E@@);Errores!A:F;6;FALSE);"Sin DTE"));"")`},
			{"largo-rut", `=IF(M@@<>""; LEN(VLOOKUP(M@@;DTEs!A:L;6;FALSE))-2;"")`},
			{"folio", `=IF(M@@<>""; INT(LEFT(RIGHT(N@@;LEN(N@@));5));"")`},
			{"monto-boleta", `=IF(M@@<>""; VLOOKUP(M@@;DTEs!A:L;10;FALSE);"")`},
			{"monto-servicios", `=IF(M@@<>""; CEILING(SUMIFS(G:G;A:A;A@@));"")`},
			{"valor", `=IFERROR(Q@@/R@@;"")`},
		},
	}
}

// posSet extends fallbackSet with the point-of-sale transaction lookups.
func posSet() Set {
	s := fallbackSet()
	s.Columns = append(s.Columns,
		Column{"voucher pos", `=IFERROR(VLOOKUP(A@@;Transacciones!A:F;3;false);"")`},
		Column{"propina pos", `=IFERROR(VLOOKUP(A@@;Transacciones!A:F;5;false);"")`},
		Column{"participantes venta", `=COUNTUNIQUEIFS(Citas!E:E;Citas!A:A;A@@)`},
	)
	return s
}

func ledgerSet() Set {
	return Set{
		FirstColumn: "B",
		GroupColumn: -1,
		SeedHeader:  "id-payment",
		Seed:        `=UNIQUE(FILTER(Citas!A2:A; Citas!C2:C="@LOCATION@"))`,
		Vars:        []string{"RUT", "LOCATION"},
		Columns: []Column{
			{"total", `=SUMIF(Citas!A:A;A@@;Citas!F:F)`},
			{"id-vlookup", `=CONCAT($A@@;"-@RUT@")`},
			{"monto-boleta", `=SUMIF(DTEs!$A:$A;C@@;DTEs!$J:$J)`},
			{"dte", `=IFERROR(VLOOKUP(C@@;DTEs!A:L;12;FALSE);VLOOKUP(CONCAT(CONCAT(A@@;"-");"@LOCATION@");Errores!A:F;6))`},
		},
	}
}

func matrixSet() Set {
	return Set{
		FirstColumn: "B",
		GroupColumn: -1,
		SeedHeader:  "payment_id",
		Seed:        `=UNIQUE(Citas!A2:A)`,
		Columns: []Column{
			{"location", `=VLOOKUP(A@@;Citas!A:L;3;FALSE)`},
			{"provider-count", `=COUNTUNIQUEIFS(Citas!D:D;Citas!A:A;A@@)`},
			{"BHE count", `=COUNTIFs(DTEs!B:B;A@@;DTEs!E:E;"boleta_honorarios")`},
			{"BA count", `=COUNTIFs(DTEs!B:B;A@@;DTEs!E:E;"boleta")`},
			{"Falta BHE", `=C@@>D@@`},
			{"Falta BA", `=AND(C@@>0;E@@=0)`},
			{"Falta DTE", `=OR(F@@;G@@)`},
			{"Emisor", `=IF(H@@;IFERROR(VLOOKUP(A@@;Errores!B:F;4;false);"");"")`},
			{"Error", `=IF(H@@;IFERROR(VLOOKUP(A@@;Errores!B:F;5;false);"No hubo error");"")`},
		},
	}
}
