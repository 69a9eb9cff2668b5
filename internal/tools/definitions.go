package tools

// Tool names understood by the Dispatcher.
const (
	SearchProducts = "search_products"
	CreateCart     = "create_cart"
	GetMyCart      = "get_my_cart"
	AddToCart      = "add_to_cart"
	PlaceOrder     = "place_order"
)

type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
)

type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required,omitempty"`
}

// Definition describes a tool to the reasoning engine.
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
}

// Definitions returns the tool capability list in a fixed order.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        SearchProducts,
			Description: "Search for products. Returns list of items.",
			Params: []Param{
				{Name: "query", Type: TypeString, Description: "Keywords"},
				{Name: "max_price", Type: TypeNumber, Description: "Upper price bound"},
				{Name: "location", Type: TypeString, Description: "Seller location"},
			},
		},
		{
			Name:        CreateCart,
			Description: "Create a new shopping cart. Returns cart info.",
			Params:      []Param{},
		},
		{
			Name:        GetMyCart,
			Description: "Get current cart details.",
			Params:      []Param{},
		},
		{
			Name:        AddToCart,
			Description: "Add product to cart.",
			Params: []Param{
				{Name: "product_id", Type: TypeString, Required: true},
				{Name: "quantity", Type: TypeInteger, Description: "Defaults to 1"},
			},
		},
		{
			Name:        PlaceOrder,
			Description: "Checkout and place order from current cart.",
			Params: []Param{
				{Name: "delivery_slot", Type: TypeString, Description: "Defaults to Standard"},
			},
		},
	}
}
