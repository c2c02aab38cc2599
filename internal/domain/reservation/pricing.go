package reservation

import "time"

// monthlyStayDays is the stay length, in nights, from which the
// monthly discount applies.
const monthlyStayDays = 30

// Nights returns the billable night count of [start, end).
func Nights(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// Total computes the reservation price in the smallest currency unit.
// Stays of a month or longer get the office's monthly discount applied
// to the whole amount, rounded half-up to the nearest unit.
func Total(pricePerDay, monthlyDiscount int, start, end time.Time) int {
	nights := Nights(start, end)
	if nights <= 0 {
		return 0
	}

	price := nights * pricePerDay
	if nights >= monthlyStayDays && monthlyDiscount > 0 {
		price = (price*(100-monthlyDiscount) + 50) / 100
	}
	return price
}
