package domain

import "time"

// TimeLayout is fixed width so created_at sorts lexically in sqlite.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

func Now() string { return time.Now().UTC().Format(TimeLayout) }

type Product struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Price       Money  `db:"price" json:"price"`
	Stock       int    `db:"stock" json:"stock"`
	Image       string `db:"image" json:"image"`
	Category    string `db:"category" json:"category"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Count    int    `db:"count" json:"count"`
}

// Customer is the contact block captured at checkout.
type Customer struct {
	Name     string `db:"customer_name" json:"customerName"`
	Email    string `db:"customer_email" json:"customerEmail"`
	Phone    string `db:"customer_phone" json:"customerPhone"`
	USN      string `db:"customer_usn" json:"customerUsn"`
	Year     string `db:"customer_year" json:"customerYear"`
	Semester string `db:"customer_semester" json:"customerSemester"`
}

// LineItem snapshots name and unit price at order time.
type LineItem struct {
	OrderID   string `db:"order_id" json:"-"`
	ProductID string `db:"product_id" json:"productId"`
	Name      string `db:"name" json:"name"`
	Quantity  int    `db:"quantity" json:"quantity"`
	UnitPrice Money  `db:"unit_price" json:"price"`
}

func (li LineItem) Subtotal() Money { return li.UnitPrice.Times(li.Quantity) }

type Order struct {
	ID string `db:"id" json:"id"`
	Customer
	Items             []LineItem  `db:"-" json:"items"`
	TotalAmount       Money       `db:"total_amount" json:"totalAmount"`
	Status            OrderStatus `db:"status" json:"status"`
	PaymentMethod     string      `db:"payment_method" json:"paymentMethod"`
	PaymentScreenshot *string     `db:"payment_screenshot" json:"paymentScreenshot"`
	CreatedAt         string      `db:"created_at" json:"createdAt"`
}

type HelpRequest struct {
	ID                string        `db:"id" json:"id"`
	Name              string        `db:"name" json:"name"`
	USN               string        `db:"usn" json:"usn"`
	Year              string        `db:"year" json:"year"`
	Semester          string        `db:"semester" json:"semester"`
	Phone             string        `db:"phone" json:"phone"`
	Email             string        `db:"email" json:"email"`
	ProjectDetails    string        `db:"project_details" json:"projectDetails"`
	DepositAmount     Money         `db:"deposit_amount" json:"depositAmount"`
	Status            HelpStatus    `db:"status" json:"status"`
	PaymentStatus     PaymentStatus `db:"payment_status" json:"paymentStatus"`
	PaymentScreenshot *string       `db:"payment_screenshot" json:"paymentScreenshot"`
	CreatedAt         string        `db:"created_at" json:"createdAt"`
}

type ContactMessage struct {
	ID        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Email     string        `db:"email" json:"email"`
	Subject   string        `db:"subject" json:"subject"`
	Message   string        `db:"message" json:"message"`
	Status    ContactStatus `db:"status" json:"status"`
	CreatedAt string        `db:"created_at" json:"createdAt"`
}

// Availability is the shopper-facing view of a product's stock.
type Availability struct {
	ProductID string `json:"productId"`
	Status    string `json:"status"`
	Qty       int    `json:"qty"`
}
