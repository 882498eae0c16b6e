package warehouse

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/crosscheck/internal/dataset"
)

// Database keys.
const (
	DBTready = "tready"
	DBDWH    = "dwh"
	DBAP     = "ap"
)

// Query is one staging extract: the SQL, the database it runs on and the tab
// that receives it. When Schema is set the result columns must match it.
type Query struct {
	Name   string
	Tab    string
	DB     string
	SQL    string
	Schema dataset.Schema
}

// Params bind a staging query: $1 company id, $2 from (inclusive), $3 to
// (exclusive).
type Params struct {
	From      time.Time
	To        time.Time
	CompanyID int64
}

// Args returns the positional arguments.
func (p Params) Args() []any {
	return []any{p.CompanyID, p.From, p.To}
}

// Validate checks the date window.
func (p Params) Validate() error {
	if p.CompanyID <= 0 {
		return fmt.Errorf("company id must be positive")
	}
	if !p.From.Before(p.To) {
		return fmt.Errorf("date from %s must be before date to %s",
			p.From.Format(time.DateOnly), p.To.Format(time.DateOnly))
	}
	return nil
}

// Queries returns the staging queries in load order.
func Queries() []Query {
	return []Query{
		{Name: "dtes", Tab: "DTEs", DB: DBTready, SQL: dtesSQL, Schema: dataset.Documents},
		{Name: "citas", Tab: "Citas", DB: DBDWH, SQL: citasSQL, Schema: dataset.Bookings},
		{Name: "errores", Tab: "Errores", DB: DBTready, SQL: erroresSQL, Schema: dataset.Errors},
		{Name: "transacciones", Tab: "Transacciones", DB: DBAP, SQL: transaccionesSQL, Schema: dataset.Transactions},
		{Name: "emisores", Tab: "Emisores", DB: DBTready, SQL: emisoresSQL, Schema: dataset.Issuers},
	}
}

// WithOverrides replaces the SQL of named queries with the contents of files.
func WithOverrides(queries []Query, files map[string]string) ([]Query, error) {
	out := make([]Query, len(queries))
	copy(out, queries)

	known := make(map[string]bool, len(queries))
	for i, q := range out {
		known[q.Name] = true
		path, ok := files[q.Name]
		if !ok || path == "" {
			continue
		}
		data, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("failed to read %s query override: %w", q.Name, err)
		}
		out[i].SQL = string(data)
	}

	for name := range files {
		if !known[name] {
			return nil, fmt.Errorf("unknown query %q in overrides", name)
		}
	}
	return out, nil
}

const dtesSQL = `
select p.payment_id::text || '-' || d.issuer_identification as vlookup_id,
       p.payment_id,
       d.id                                                 as tready_id,
       to_char(d.issued_at, 'yyyy-MM-dd HH24:mi')           as fecha_emision,
       d.tax_receipt_type                                   as tipo_dte,
       d.issuer_identification                              as emisor_rut,
       d.issuer_name                                        as emisor_nombre,
       d.customer_identification                            as receptor_rut,
       d.customer_name                                      as receptor_nombre,
       d.total::int                                         as monto,
       '''' || ((d.document::json) ->> 'number')::text      as folio,
       (d.document::json) ->> 'url'                         as pdf
from dtes d
         join payments p on (p.id = d.payment_id)
where p.company_id = $1
  and p.paid_at >= $2
  and p.paid_at < $3
  and status = 'completed'
  and version = 'final'
order by p.payment_id desc`

const citasSQL = `
select payment_id,
       to_char(booking_start_time, 'yyyy-MM-dd HH24:mi') as booking_start_time,
       location,
       provider_id,
       provider_name,
       booking_id,
       booking_price,
       booking_status,
       client_id,
       client_name,
       service_id,
       service_name
from dwh.augmented_bookings
where company_id = $1
  and booking_start_time >= $2
  and booking_start_time < $3
  and payment_id is not null
order by booking_start_time desc`

const erroresSQL = `
with all_errors as (select p.payment_id || '-' || d.issuer_name                  as vlookup_id,
                           p.payment_id,
                           d.issuer_identification,
                           d.issuer_name,
                           case
                               when d.status || '-' || d.version = 'error-final'
                                   then d.error ->> 'description' end          as error,
                           to_char(d.updated_at, 'yyyyMMdd HH24:mi')           as updated_at,
                           row_number() over (partition by p.payment_id, d.issuer_name
                               order by d.updated_at desc)                     as rn
                    from dtes d
                             left join payments p on d.payment_id = p.id
                    where p.company_id = $1
                      and p.paid_at >= $2
                      and p.paid_at < $3
                      and d.error is not null)
select vlookup_id,
       payment_id,
       updated_at,
       issuer_identification,
       issuer_name,
       error
from all_errors
where rn = 1
order by 1, 3`

const transaccionesSQL = `
select s.payment_id,
       t.id as transaction_id,
       t.external_reference,
       t.amount::int,
       t.tip::int,
       to_char(p.payment_date, 'yyyy-MM-dd HH24:mi') as payment_date
from transactions t
         left join payment_requests pr on t.payment_request_id = pr.id
         left join sales s on pr.cart_id = s.cart_id
         left join payments p on s.payment_id = p.id
where t.company_id = $1
  and t.paid_at >= $2
  and t.paid_at < $3
  and t.paymentable_id = 40
order by t.created_at desc`

const emisoresSQL = `
with real_ruts as (select p.company_id, d.issuer_identification as rut, d.issuer_name, count(1) as q
                   from dtes d
                            left join payments p on d.payment_id = p.id
                   where p.company_id = $1
                     and p.paid_at >= $2
                     and p.paid_at < $3
                     and status = 'completed'
                     and version = 'final'
                   group by 1, 2, 3),
     raw_theoretical_ruts as (select company_id,
                                     json_object_keys(params -> 'dtemite') as rut,
                                     params ->> 'name'                     as issuer_name,
                                     0                                     as q
                              from company_values
                              where company_id = $1
                              union all
                              select company_id, params ->> 'rut' as rut, params ->> 'name' as issuer_name, 0 as q
                              from provider_values
                              where company_id = $1),
     theoretical_ruts as (select *
                          from raw_theoretical_ruts
                          where rut is not null)
select coalesce(r.issuer_name, t.issuer_name) as issuer_name,
       rut
from real_ruts r
         full outer join theoretical_ruts t using (company_id, rut)`
