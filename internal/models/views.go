package models

// Composite read models assembled by the storage layer. References are
// pointers: a dangling foreign key renders as null instead of a zero value.

type ProductWithFarmer struct {
	Product
	Farmer   *Farmer   `json:"farmer"`
	Category *Category `json:"category"`
}

type FarmerWithProducts struct {
	Farmer
	User     *User     `json:"user"`
	Products []Product `json:"products"`
}

type OrderItemWithProduct struct {
	OrderItem
	Product *Product `json:"product"`
}

type OrderWithItems struct {
	Order
	Items []OrderItemWithProduct `json:"items"`
}
