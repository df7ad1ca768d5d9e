package tsv

// Live inventory report columns
const (
	ColSKU                 = "sku"
	ColSellerSKU           = "seller-sku"
	ColASIN                = "asin"
	ColFNSKU               = "fnsku"
	ColListingExists       = "afn-listing-exists"
	ColFulfillableQuantity = "afn-fulfillable-quantity"
	ColReservedQuantity    = "afn-reserved-quantity"
	ColUnsellableQuantity  = "afn-unsellable-quantity"
)

// Stock adjustment report columns
const (
	ColTransactionItemID   = "transaction-item-id"
	ColReason              = "reason"
	ColDisposition         = "disposition"
	ColFulfillmentCenterID = "fulfillment-center-id"
	ColAdjustedDate        = "adjusted-date"
	ColQuantity            = "quantity"
)

// Unshipped order report columns
const (
	ColOrderID               = "order-id"
	ColOrderItemID           = "order-item-id"
	ColSalesChannel          = "sales-channel"
	ColPurchaseDate          = "purchase-date"
	ColPromiseDate           = "promise-date"
	ColProductName           = "product-name"
	ColQuantityPurchased     = "quantity-purchased"
	ColItemPrice             = "item-price"
	ColItemTax               = "item-tax"
	ColShippingPrice         = "shipping-price"
	ColShippingTax           = "shipping-tax"
	ColItemPromotionDiscount = "item-promotion-discount"
	ColShipPromotionDiscount = "ship-promotion-discount"
	ColShipServiceLevel      = "ship-service-level"
	ColBuyerName             = "buyer-name"
	ColBuyerEmail            = "buyer-email"
	ColBuyerPhone            = "buyer-phone-number"
	ColBuyerTaxID            = "buyer-tax-registration-id"
	ColRecipientName         = "recipient-name"
	ColShipAddress1          = "ship-address-1"
	ColShipAddress2          = "ship-address-2"
	ColShipAddress3          = "ship-address-3"
	ColShipCity              = "ship-city"
	ColShipState             = "ship-state"
	ColShipPostalCode        = "ship-postal-code"
	ColShipCountry           = "ship-country"
	ColShipPhone             = "ship-phone-number"
	ColVATNumber             = "vat-number"
	ColVATCountry            = "vat-country"
)
