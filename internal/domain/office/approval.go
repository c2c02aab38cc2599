package office

// Field names used for change tracking on office updates.
const (
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldAddressLine1    = "address_line1"
	FieldLat             = "lat"
	FieldLng             = "lng"
	FieldPricePerDay     = "price_per_day"
	FieldMonthlyDiscount = "monthly_discount"
	FieldHidden          = "hidden"
	FieldFeaturedImage   = "featured_image_id"
	FieldTags            = "tags"
)

// substantiveFields are the fields whose edit sends a listing back
// through approval. Cosmetic fields (featured image, tags, hidden)
// keep the current status.
var substantiveFields = map[string]struct{}{
	FieldTitle:           {},
	FieldDescription:     {},
	FieldAddressLine1:    {},
	FieldLat:             {},
	FieldLng:             {},
	FieldPricePerDay:     {},
	FieldMonthlyDiscount: {},
}

// Transition computes the approval status after an edit that changed
// the given fields, and whether administrators must be notified.
// Any substantive change resets the listing to pending exactly once
// per edit; a purely cosmetic edit leaves the status untouched.
func Transition(current ApprovalStatus, changedFields []string) (ApprovalStatus, bool) {
	for _, f := range changedFields {
		if _, ok := substantiveFields[f]; ok {
			return ApprovalPending, true
		}
	}
	return current, false
}
