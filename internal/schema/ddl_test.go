package schema

import (
	"testing"
)

func TestFromDDL(t *testing.T) {
	tests := []struct {
		name      string
		ddl       string
		wantTable string
		wantCols  []string
		wantRels  []string
	}{
		{
			name:      "columns and foreign key",
			ddl:       "CREATE TABLE orders (id INT, FOREIGN KEY (cust_id) REFERENCES customers(id))",
			wantTable: "orders",
			wantCols:  []string{"id INT"},
			wantRels:  []string{"cust_id -> customers.id"},
		},
		{
			name:      "primary key definitions are dropped",
			ddl:       "CREATE TABLE users (id INT, name VARCHAR(100), PRIMARY KEY (id))",
			wantTable: "users",
			wantCols:  []string{"id INT", "name VARCHAR(100)"},
			wantRels:  []string{},
		},
		{
			name:      "nested parentheses survive the split",
			ddl:       "CREATE TABLE t (price DECIMAL(10, 2), name VARCHAR(255))",
			wantTable: "t",
			wantCols:  []string{"price DECIMAL(10, 2)", "name VARCHAR(255)"},
			wantRels:  []string{},
		},
		{
			name:      "quoted table name",
			ddl:       `CREATE TABLE "order_items" (id INT)`,
			wantTable: "order_items",
			wantCols:  []string{"id INT"},
			wantRels:  []string{},
		},
		{
			name:      "backtick table name",
			ddl:       "CREATE TABLE `events` (id INT)",
			wantTable: "events",
			wantCols:  []string{"id INT"},
			wantRels:  []string{},
		},
		{
			name:      "if not exists",
			ddl:       "CREATE TABLE IF NOT EXISTS logs (msg TEXT)",
			wantTable: "logs",
			wantCols:  []string{"msg TEXT"},
			wantRels:  []string{},
		},
		{
			name:      "case insensitive keywords",
			ddl:       "create table sales (id int, foreign key (sku) references products(sku))",
			wantTable: "sales",
			wantCols:  []string{"id int"},
			wantRels:  []string{"sku -> products.sku"},
		},
		{
			name: "only the first create table is parsed",
			ddl: `CREATE TABLE first (a INT);
CREATE TABLE second (b INT);`,
			wantTable: "first",
			wantCols:  []string{"a INT"},
			wantRels:  []string{},
		},
		{
			name:      "malformed foreign key contributes nothing",
			ddl:       "CREATE TABLE t (id INT, FOREIGN KEY (x) REFS other(id))",
			wantTable: "t",
			wantCols:  []string{"id INT"},
			wantRels:  []string{},
		},
		{
			name:      "no create table yields sentinel",
			ddl:       "SELECT * FROM somewhere",
			wantTable: UnknownTable,
			wantCols:  []string{},
			wantRels:  []string{},
		},
		{
			name:      "multiple foreign keys",
			ddl:       "CREATE TABLE line_items (qty INT, FOREIGN KEY (order_id) REFERENCES orders(id), FOREIGN KEY (sku) REFERENCES products(sku))",
			wantTable: "line_items",
			wantCols:  []string{"qty INT"},
			wantRels:  []string{"order_id -> orders.id", "sku -> products.sku"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fromDDL(tt.ddl)
			if got.TableName != tt.wantTable {
				t.Errorf("TableName = %q, want %q", got.TableName, tt.wantTable)
			}
			assertStrings(t, "Columns", got.Columns, tt.wantCols)
			assertStrings(t, "Relationships", got.Relationships, tt.wantRels)
		})
	}
}

func assertStrings(t *testing.T, label string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %q, want %q", label, i, got[i], want[i])
		}
	}
}
