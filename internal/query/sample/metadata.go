package sample

// Function names reported by the connector functions endpoint.
var functionNames = []string{
	"COUNT", "SUM", "AVG", "MIN", "MAX",
	"UPPER", "LOWER", "LENGTH", "SUBSTRING",
	"DATE", "NOW", "YEAR", "MONTH", "DAY",
	"COALESCE", "CASE", "CAST", "CONVERT",
}

func Functions() []string {
	out := make([]string, len(functionNames))
	copy(out, functionNames)
	return out
}

type TableColumn struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type TableDescription struct {
	Name    string        `json:"name"`
	Columns []TableColumn `json:"columns"`
}

type ConnectorSchemaDescription struct {
	Tables []TableDescription `json:"tables"`
}

func ConnectorSchema() ConnectorSchemaDescription {
	return ConnectorSchemaDescription{
		Tables: []TableDescription{
			{
				Name: "customers",
				Columns: []TableColumn{
					{Name: "id", Type: "INTEGER", Nullable: false},
					{Name: "name", Type: "VARCHAR", Nullable: false},
					{Name: "email", Type: "VARCHAR", Nullable: true},
					{Name: "created_at", Type: "TIMESTAMP", Nullable: false},
				},
			},
			{
				Name: "orders",
				Columns: []TableColumn{
					{Name: "id", Type: "INTEGER", Nullable: false},
					{Name: "customer_id", Type: "INTEGER", Nullable: false},
					{Name: "amount", Type: "DECIMAL", Nullable: false},
					{Name: "status", Type: "VARCHAR", Nullable: false},
					{Name: "created_at", Type: "TIMESTAMP", Nullable: false},
				},
			},
		},
	}
}

// ModelColumn carries either primaryKey or nullable, matching the MDL engine's
// schema payload where key columns omit nullable.
type ModelColumn struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey *bool  `json:"primaryKey,omitempty"`
	Nullable   *bool  `json:"nullable,omitempty"`
}

type ModelDescription struct {
	Name    string        `json:"name"`
	Columns []ModelColumn `json:"columns"`
}

type Relationship struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

type MDLSchemaDescription struct {
	Models        []ModelDescription `json:"models"`
	Relationships []Relationship     `json:"relationships"`
}

func MDLSchema() MDLSchemaDescription {
	return MDLSchemaDescription{
		Models: []ModelDescription{
			{
				Name: "customers",
				Columns: []ModelColumn{
					keyColumn("id", "INTEGER"),
					column("name", "VARCHAR", false),
					column("email", "VARCHAR", true),
					column("created_at", "TIMESTAMP", false),
				},
			},
			{
				Name: "orders",
				Columns: []ModelColumn{
					keyColumn("id", "INTEGER"),
					column("customer_id", "INTEGER", false),
					column("amount", "DECIMAL", false),
					column("status", "VARCHAR", false),
					column("created_at", "TIMESTAMP", false),
				},
			},
			{
				Name: "products",
				Columns: []ModelColumn{
					keyColumn("id", "INTEGER"),
					column("name", "VARCHAR", false),
					column("price", "DECIMAL", false),
					column("category", "VARCHAR", true),
					column("created_at", "TIMESTAMP", false),
				},
			},
		},
		Relationships: []Relationship{
			{
				Name: "customer_orders",
				From: "orders.customer_id",
				To:   "customers.id",
				Type: "many-to-one",
			},
		},
	}
}

func keyColumn(name, typ string) ModelColumn {
	primary := true
	return ModelColumn{Name: name, Type: typ, PrimaryKey: &primary}
}

func column(name, typ string, nullable bool) ModelColumn {
	return ModelColumn{Name: name, Type: typ, Nullable: &nullable}
}
