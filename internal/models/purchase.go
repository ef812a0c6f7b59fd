package models

import "time"

// Delivery channels of a cherry purchase.
const (
	DeliveryDirect         = "DIRECT_DELIVERY"
	DeliverySiteCollection = "SITE_COLLECTION"
	DeliverySupplier       = "SUPPLIER"
)

type Purchase struct {
	ID               int       `json:"id"`
	StationID        int       `json:"cwsId"`
	DeliveryType     string    `json:"deliveryType"`
	SiteCollectionID *int      `json:"siteCollectionId"`
	TotalKgs         float64   `json:"totalKgs"`
	TotalPrice       float64   `json:"totalPrice"`
	CherryPrice      float64   `json:"cherryPrice"`
	TransportFee     float64   `json:"transportFee"`
	CommissionFee    float64   `json:"commissionFee"`
	Grade            string    `json:"grade"`
	BatchNo          string    `json:"batchNo"`
	PurchaseDate     time.Time `json:"purchaseDate"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type CreatePurchaseRequest struct {
	StationID        int     `json:"cwsId" validate:"required"`
	DeliveryType     string  `json:"deliveryType" validate:"required,oneof=DIRECT_DELIVERY SITE_COLLECTION SUPPLIER"`
	SiteCollectionID *int    `json:"siteCollectionId"`
	TotalKgs         float64 `json:"totalKgs" validate:"gt=0"`
	TotalPrice       float64 `json:"totalPrice" validate:"gte=0"`
	CherryPrice      float64 `json:"cherryPrice" validate:"gte=0"`
	TransportFee     float64 `json:"transportFee" validate:"gte=0"`
	CommissionFee    float64 `json:"commissionFee" validate:"gte=0"`
	Grade            string  `json:"grade" validate:"required"`
	PurchaseDate     string  `json:"purchaseDate" validate:"required"`
}

// UpdatePurchaseRequest carries only the fields being changed.
type UpdatePurchaseRequest struct {
	StationID        *int     `json:"cwsId"`
	DeliveryType     *string  `json:"deliveryType" validate:"omitempty,oneof=DIRECT_DELIVERY SITE_COLLECTION SUPPLIER"`
	SiteCollectionID *int     `json:"siteCollectionId"`
	TotalKgs         *float64 `json:"totalKgs" validate:"omitempty,gt=0"`
	TotalPrice       *float64 `json:"totalPrice" validate:"omitempty,gte=0"`
	CherryPrice      *float64 `json:"cherryPrice" validate:"omitempty,gte=0"`
	TransportFee     *float64 `json:"transportFee" validate:"omitempty,gte=0"`
	CommissionFee    *float64 `json:"commissionFee" validate:"omitempty,gte=0"`
	Grade            *string  `json:"grade" validate:"omitempty,min=1"`
}
