package domain

import "time"

// Order is the read-only order record returned by the platform API.
// Clients never mutate orders; OrderSO is the human-readable order number
// and is what receipt filenames are derived from.
type Order struct {
	ID        string      `json:"id"`
	OrderSO   string      `json:"order_so"`
	Status    string      `json:"status"`
	Type      string      `json:"type"`
	Total     float64     `json:"total"`
	Points    int         `json:"points"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Customer mirrors the "customerData" object kept in device storage.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CheckInStatus is the server-derived streak counter. The client only
// renders it; the reward rules live server-side.
type CheckInStatus struct {
	CurrentStreak int  `json:"current_streak"`
	TargetStreak  int  `json:"target_streak"`
	CheckedToday  bool `json:"checked_today"`
}

type PointsEntry struct {
	ID        string    `json:"id"`
	Points    int       `json:"points"`
	Kind      string    `json:"kind"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Voucher struct {
	ID       string    `json:"id"`
	Code     string    `json:"code"`
	Title    string    `json:"title"`
	Discount float64   `json:"discount"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Status   string    `json:"status"`
}
