package mongo

const (
	InventoryCollection      = "Inventory"
	BookingsCollection       = "Bookings"
	CheckoutsCollection      = "Checkouts"
	ProfilesCollection       = "Profiles"
	ReconcileCasesCollection = "Reconcile_cases"
)
