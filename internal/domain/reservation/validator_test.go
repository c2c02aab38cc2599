package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeOffices struct {
	offices map[uuid.UUID]*OfficeInfo
}

func (f *fakeOffices) OfficeInfo(ctx context.Context, id uuid.UUID) (*OfficeInfo, error) {
	return f.offices[id], nil
}

type fakeAvailability struct {
	conflict bool
	calls    int
}

func (f *fakeAvailability) HasConflict(ctx context.Context, officeID uuid.UUID, start, end time.Time) (bool, error) {
	f.calls++
	return f.conflict, nil
}

func bookableOffice(owner uuid.UUID) *OfficeInfo {
	return &OfficeInfo{
		ID:              uuid.New(),
		OwnerID:         owner,
		PricePerDay:     1000,
		MonthlyDiscount: 10,
		Approved:        true,
	}
}

func future(offset int) time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func validatorWith(office *OfficeInfo, availability *fakeAvailability) *Validator {
	offices := &fakeOffices{offices: map[uuid.UUID]*OfficeInfo{}}
	if office != nil {
		offices.offices[office.ID] = office
	}
	return NewValidator(offices, availability)
}

func assertFieldError(t *testing.T, err error, field, want string) {
	t.Helper()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if got := verrs[field]; got != want {
		t.Fatalf("expected %s error %q, got %q (all: %v)", field, want, got, verrs)
	}
}

func TestValidateUnknownOffice(t *testing.T) {
	v := validatorWith(nil, &fakeAvailability{})

	_, err := v.Validate(context.Background(), uuid.New(), uuid.New(), future(1), future(5))
	assertFieldError(t, err, "office_id", "Invalid office_id")
}

func TestValidateOwnOffice(t *testing.T) {
	visitor := uuid.New()
	office := bookableOffice(visitor)
	v := validatorWith(office, &fakeAvailability{})

	_, err := v.Validate(context.Background(), visitor, office.ID, future(1), future(5))
	assertFieldError(t, err, "office_id", "You cannot make a reservation on your own office")
}

func TestValidateHiddenOffice(t *testing.T) {
	office := bookableOffice(uuid.New())
	office.Hidden = true
	v := validatorWith(office, &fakeAvailability{})

	_, err := v.Validate(context.Background(), uuid.New(), office.ID, future(1), future(5))
	assertFieldError(t, err, "office_id", "You cannot make a reservation on a hidden office")
}

func TestValidateUnapprovedOffice(t *testing.T) {
	office := bookableOffice(uuid.New())
	office.Approved = false
	v := validatorWith(office, &fakeAvailability{})

	_, err := v.Validate(context.Background(), uuid.New(), office.ID, future(1), future(5))
	assertFieldError(t, err, "office_id", "You cannot make a reservation on a hidden office")
}

func TestValidateStartDateNotAfterToday(t *testing.T) {
	office := bookableOffice(uuid.New())
	v := validatorWith(office, &fakeAvailability{})

	_, err := v.Validate(context.Background(), uuid.New(), office.ID, future(0), future(5))
	assertFieldError(t, err, "start_date", "The start date must be a date after today.")
}

func TestValidateStayTooShort(t *testing.T) {
	office := bookableOffice(uuid.New())
	v := validatorWith(office, &fakeAvailability{})

	_, err := v.Validate(context.Background(), uuid.New(), office.ID, future(1), future(2))
	assertFieldError(t, err, "end_date", "The end date must be a date after start date.")
}

func TestValidateEndBeforeStart(t *testing.T) {
	office := bookableOffice(uuid.New())
	v := validatorWith(office, &fakeAvailability{})

	_, err := v.Validate(context.Background(), uuid.New(), office.ID, future(5), future(1))
	assertFieldError(t, err, "end_date", "The end date must be a date after start date.")
}

func TestValidateCollectsIndependentBuckets(t *testing.T) {
	office := bookableOffice(uuid.New())
	office.Hidden = true
	v := validatorWith(office, &fakeAvailability{})

	_, err := v.Validate(context.Background(), uuid.New(), office.ID, future(0), future(1))
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	for _, field := range []string{"office_id", "start_date", "end_date"} {
		if _, ok := verrs[field]; !ok {
			t.Fatalf("expected %s error, got %v", field, verrs)
		}
	}
}

func TestValidateOverlapOnlyCheckedWhenOtherwiseValid(t *testing.T) {
	office := bookableOffice(uuid.New())
	availability := &fakeAvailability{conflict: true}
	v := validatorWith(office, availability)

	_, err := v.Validate(context.Background(), uuid.New(), office.ID, future(0), future(5))
	assertFieldError(t, err, "start_date", "The start date must be a date after today.")
	if availability.calls != 0 {
		t.Fatal("availability must not be checked for an invalid request")
	}
}

func TestValidateConflict(t *testing.T) {
	office := bookableOffice(uuid.New())
	v := validatorWith(office, &fakeAvailability{conflict: true})

	_, err := v.Validate(context.Background(), uuid.New(), office.ID, future(1), future(5))
	assertFieldError(t, err, "office_id", "You cannot make a reservation during this time")
}

func TestValidatePassesValidRequest(t *testing.T) {
	office := bookableOffice(uuid.New())
	visitor := uuid.New()
	v := validatorWith(office, &fakeAvailability{})

	validated, err := v.Validate(context.Background(), visitor, office.ID, future(1), future(5))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if validated.Office.ID != office.ID || validated.VisitorID != visitor {
		t.Fatal("validated request carries wrong office or visitor")
	}
}
