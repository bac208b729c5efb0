package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFields = []string{"country", "city", "totalOrders", "lastName", "isBlacklisted", "lastPurchaseDate", "gender"}

var testColumns = map[string]string{
	"country":          "c.country",
	"city":             "c.city",
	"totalOrders":      "(SELECT COUNT(*) FROM orders o WHERE o.client_id = c.id)",
	"lastName":         "c.last_name",
	"isBlacklisted":    "c.is_blacklisted",
	"lastPurchaseDate": "c.last_purchase_date",
	"gender":           "c.gender",
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		orFields []string
		want     Expr
		wantErr  bool
	}{
		{
			name: "empty rule",
			raw:  ``,
			want: And{},
		},
		{
			name: "fields are sorted and anded",
			raw:  `{"country":[{"eq":"FR"}],"city":[{"ne":"Paris"}]}`,
			want: And{
				Cond{Field: "city", Op: Ne, Value: "Paris"},
				Cond{Field: "country", Op: Eq, Value: "FR"},
			},
		},
		{
			name: "range on one field",
			raw:  `{"totalOrders":[{"gte":2},{"lt":10}]}`,
			want: And{
				Cond{Field: "totalOrders", Op: Gte, Value: float64(2)},
				Cond{Field: "totalOrders", Op: Lt, Value: float64(10)},
			},
		},
		{
			name: "single operator object",
			raw:  `{"lastName":{"iLike":"dup%"}}`,
			want: And{Cond{Field: "lastName", Op: ILike, Value: "dup%"}},
		},
		{
			name:     "or fields grouped",
			raw:      `{"country":[{"eq":"FR"}],"city":[{"eq":"Lyon"}],"gender":[{"eq":"F"}]}`,
			orFields: []string{"country", "city"},
			want: And{
				Cond{Field: "gender", Op: Eq, Value: "F"},
				Or{
					Cond{Field: "city", Op: Eq, Value: "Lyon"},
					Cond{Field: "country", Op: Eq, Value: "FR"},
				},
			},
		},
		{name: "unknown field", raw: `{"password":[{"eq":"x"}]}`, wantErr: true},
		{name: "unknown operator", raw: `{"country":[{"regex":"x"}]}`, wantErr: true},
		{name: "in needs list", raw: `{"country":[{"in":"FR"}]}`, wantErr: true},
		{name: "not an object", raw: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.raw), testFields, tt.orFields...)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		expr     Expr
		wantSQL  string
		wantArgs []any
		wantErr  bool
	}{
		{
			name:    "empty and",
			expr:    And{},
			wantSQL: "1 = 1",
		},
		{
			name:     "comparison",
			expr:     Cond{Field: "country", Op: Eq, Value: "FR"},
			wantSQL:  "c.country = ?",
			wantArgs: []any{"FR"},
		},
		{
			name:    "null equality",
			expr:    Cond{Field: "lastPurchaseDate", Op: Eq, Value: nil},
			wantSQL: "c.last_purchase_date IS NULL",
		},
		{
			name: "computed metric and like",
			expr: And{
				Cond{Field: "totalOrders", Op: Gte, Value: float64(2)},
				Cond{Field: "lastName", Op: ILike, Value: "dup%"},
			},
			wantSQL:  "((SELECT COUNT(*) FROM orders o WHERE o.client_id = c.id) >= ?) AND (LOWER(c.last_name) LIKE LOWER(?))",
			wantArgs: []any{float64(2), "dup%"},
		},
		{
			name: "or group",
			expr: Or{
				Cond{Field: "city", Op: Eq, Value: "Lyon"},
				Cond{Field: "country", Op: In, Value: []any{"FR", "BE"}},
			},
			wantSQL:  "(c.city = ?) OR (c.country IN ?)",
			wantArgs: []any{"Lyon", []any{"FR", "BE"}},
		},
		{
			name:    "empty in",
			expr:    Cond{Field: "country", Op: In, Value: []any{}},
			wantSQL: "1 = 0",
		},
		{
			name:     "value never reaches sql text",
			expr:     Cond{Field: "country", Op: Eq, Value: "'; DROP TABLE clients; --"},
			wantSQL:  "c.country = ?",
			wantArgs: []any{"'; DROP TABLE clients; --"},
		},
		{
			name:    "field outside whitelist",
			expr:    Cond{Field: "password", Op: Eq, Value: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := Compile(tt.expr, testColumns)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
