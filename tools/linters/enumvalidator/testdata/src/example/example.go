package example

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
)

type Role string

const (
	RoleOwner Role = "owner"
)

type Transaction struct {
	Type   TransactionType
	Status TransactionStatus
}

type TeamMember struct {
	Role Role
}

func bad() {
	t := &Transaction{}
	t.Type = "refund" // want "enum field Type assigned string literal"

	m := &TeamMember{}
	m.Role = "superadmin" // want "enum field Role assigned string literal"
}

func good() {
	t := &Transaction{}
	t.Type = TypeIncome // OK: using constant

	m := &TeamMember{}
	m.Role = RoleOwner // OK: using constant
}

func alsoGood() {
	// OK: Variable, not literal
	status := StatusConfirmed
	t := &Transaction{Status: status}
	_ = t
}
