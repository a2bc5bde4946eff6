// Package filter provides a store-agnostic predicate tree.
// Query builders produce an Expr; each storage adapter compiles or
// evaluates it against its own representation of documents.
package filter

// ComparisonType определяет виды сравнения.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"       // Равно
	NotEqual       ComparisonType = "neq"      // Не равно
	Less           ComparisonType = "lt"       // Меньше
	Greater        ComparisonType = "gt"       // Больше
	LessOrEqual    ComparisonType = "lte"      // Меньше или равно
	GreaterOrEqual ComparisonType = "gte"      // Больше или равно
	InList         ComparisonType = "in"       // В списке
	ContainsText   ComparisonType = "contains" // Содержит, без учета регистра
)

// Reserved field paths mapped to document metadata.
const (
	FieldID          = "_id"
	FieldDeleted     = "_deleted"
	FieldCreatedDate = "_createdDate"
	FieldUpdatedDate = "_updatedDate"
)

// Expr is a node of the predicate tree: Item, And, Or or ElemMatch.
type Expr interface {
	isExpr()
}

// Item представляет одну строку отбора.
type Item struct {
	Field    string         `json:"field"`    // JSON path, e.g. "supplier.name"
	Operator ComparisonType `json:"operator"` // Вид сравнения
	Value    any            `json:"value"`    // string, bool, number, time.Time, id.ID, []any for InList
}

// And holds when every child holds. An empty And always holds.
type And []Expr

// Or holds when at least one child holds. An empty Or never holds.
type Or []Expr

// ElemMatch holds when some element of the array at Field satisfies Cond.
// Field paths inside Cond are relative to the element.
type ElemMatch struct {
	Field string `json:"field"`
	Cond  Expr   `json:"cond"`
}

func (Item) isExpr()      {}
func (And) isExpr()       {}
func (Or) isExpr()        {}
func (ElemMatch) isExpr() {}
