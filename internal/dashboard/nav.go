package dashboard

// Section is one of the dashboard's top-level views.
type Section string

const (
	SectionDashboard       Section = "dashboard"
	SectionOrders          Section = "orders"
	SectionPaymentSettings Section = "payment-settings"
)

// Sections lists all sections in navigation order.
func Sections() []Section {
	return []Section{SectionDashboard, SectionOrders, SectionPaymentSettings}
}

// Nav keeps exactly one section active at a time. The initial section after
// login is the dashboard.
type Nav struct {
	active Section
}

// NewNav creates a Nav showing the dashboard section.
func NewNav() *Nav {
	return &Nav{active: SectionDashboard}
}

// Activate shows the given section and hides the rest. Unknown sections are
// ignored so a bad navigation entry cannot blank the whole view.
func (n *Nav) Activate(s Section) {
	switch s {
	case SectionDashboard, SectionOrders, SectionPaymentSettings:
		n.active = s
	}
}

// Active returns the visible section.
func (n *Nav) Active() Section { return n.active }

// IsActive reports whether s is the visible section.
func (n *Nav) IsActive(s Section) bool { return n.active == s }
