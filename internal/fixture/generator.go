package fixture

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Column declares one column of a seeded table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
}

// Table declares a seeded table.
type Table struct {
	Name    string
	Columns []Column
}

// Generator produces column values from a seeded faker so that fixtures are
// reproducible across runs.
type Generator struct {
	faker *gofakeit.Faker
	// NullRatio is the share of NULLs produced for nullable columns, 0..1.
	NullRatio float64
}

func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed), NullRatio: 0.1}
}

// Value generates a value based on the column definition. The column name
// is consulted first so that emails look like emails, then the type.
func (g *Generator) Value(col Column) any {
	if col.Nullable && g.NullRatio > 0 && g.faker.Float64Range(0, 1) < g.NullRatio {
		return nil
	}

	dataType := strings.ToLower(col.Type)
	colName := strings.ToLower(col.Name)

	if strings.Contains(dataType, "char") || strings.Contains(dataType, "text") || strings.Contains(dataType, "string") {
		switch {
		case strings.Contains(colName, "email"):
			return g.faker.Email()
		case strings.Contains(colName, "phone"):
			return g.faker.Phone()
		case strings.Contains(colName, "first"):
			return g.faker.FirstName()
		case strings.Contains(colName, "last"):
			return g.faker.LastName()
		case strings.Contains(colName, "name"):
			return g.faker.Name()
		case strings.Contains(colName, "city"):
			return g.faker.City()
		case strings.Contains(colName, "country"):
			return g.faker.Country()
		case strings.Contains(colName, "description") || strings.Contains(colName, "comment"):
			return g.faker.Sentence(12)
		}
		return g.faker.Word()
	}

	if strings.Contains(dataType, "date") || strings.Contains(dataType, "time") {
		end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		val := g.faker.DateRange(end.AddDate(-1, 0, 0), end)
		if dataType == "date" {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	}

	if strings.Contains(dataType, "int") {
		if strings.Contains(colName, "active") || strings.HasPrefix(colName, "is_") {
			return g.faker.Number(0, 1)
		}
		return g.faker.Number(1, 50000)
	}

	if strings.Contains(dataType, "decimal") || strings.Contains(dataType, "numeric") ||
		strings.Contains(dataType, "real") || strings.Contains(dataType, "float") || strings.Contains(dataType, "double") {
		return g.faker.Price(0.99, 99.99)
	}

	if strings.Contains(dataType, "bool") {
		return g.faker.Bool()
	}

	if strings.Contains(dataType, "blob") || strings.Contains(dataType, "binary") {
		return []byte(g.faker.LetterN(8))
	}

	return nil
}
