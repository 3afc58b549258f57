// internal/fienta/selectors.go
package fienta

// Strategy lists for every conceptual element the engine touches. New DOM
// variants observed in the console get appended here, not inlined at call
// sites.

var addNewStrategies = []Strategy{
	{Name: "direct-link", Selector: `a[href$="/discounts/new"]`},
	{Name: "menu-item", Selector: `.dropdown-menu a[href*="/discounts/new"]`},
}

var codeFieldStrategies = []Strategy{
	{Name: "by-name", Selector: `input[name="code"]`},
	{Name: "by-id", Selector: `#code`},
}

var amountFieldStrategies = []Strategy{
	{Name: "by-name", Selector: `input[name="discount"]`},
	{Name: "by-id", Selector: `#discount`},
}

var orderLimitStrategies = []Strategy{
	{Name: "by-name", Selector: `input[name="order_limit"]`},
	{Name: "legacy-name", Selector: `input[name="max_orders"]`},
}

var ticketLimitStrategies = []Strategy{
	{Name: "by-name", Selector: `input[name="ticket_limit"]`},
	{Name: "legacy-name", Selector: `input[name="max_tickets"]`},
}

var descriptionStrategies = []Strategy{
	{Name: "by-name", Selector: `textarea[name="description"]`},
	{Name: "input-variant", Selector: `input[name="description"]`},
}

var unitPercentStrategies = []Strategy{
	{Name: "radio", Selector: `input[name="unit"][value="percent"]`},
	{Name: "toggle-label", Selector: `label[for="unit-percent"]`},
}

var unitAbsoluteStrategies = []Strategy{
	{Name: "radio", Selector: `input[name="unit"][value="absolute"]`},
	{Name: "toggle-label", Selector: `label[for="unit-absolute"]`},
}

var submitStrategies = []Strategy{
	{Name: "primary-submit", Selector: `button[type="submit"]`},
	{Name: "save-button", Selector: `.btn-primary`},
}

var deleteStrategies = []Strategy{
	{Name: "btn-delete", Selector: `button.btn-delete, .btn-delete`},
	{Name: "danger-button", Selector: `.btn-danger`},
}

var confirmStrategies = []Strategy{
	{Name: "modal-danger", Selector: `.modal .btn-danger`},
	{Name: "modal-primary", Selector: `.modal .btn-primary`},
	{Name: "swal-confirm", Selector: `.swal2-confirm`},
}
