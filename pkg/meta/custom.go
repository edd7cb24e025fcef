package meta

// customFieldModels maps resource values to the model name accepted by the
// custom-fields endpoint. Only resources listed here get custom-field
// inputs; everything else has no tenant-defined attributes.
var customFieldModels = map[string]string{
	"pipelines": "lead",
	"leads":     "lead",
	"buyer":     "buyer",
	"contacts":  "contact",
	"companies": "company",
	"order":     "order",
	"orders":    "order",
	"products":  "product",
	"offers":    "offer",
}

// CustomFieldModel returns the custom-field model name for a resource
// value, if the resource supports custom fields.
func CustomFieldModel(resourceValue string) (string, bool) {
	model, ok := customFieldModels[resourceValue]
	return model, ok
}
