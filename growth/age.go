/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package growth

import "time"

// CompletedMonths returns the whole calendar months elapsed between dob and
// observedAt. A month only counts once its day-of-month has been reached, so
// the granularity is not uniform in days. Time-of-day is ignored, and an
// observation before the date of birth yields 0.
func CompletedMonths(dob, observedAt time.Time) int {
	by, bm, bd := dob.Date()
	oy, om, od := observedAt.Date()

	months := (oy-by)*12 + int(om-bm)
	if od < bd {
		months--
	}

	if months < 0 {
		return 0
	}

	return months
}

// DatesOutOfOrder reports whether the observation date falls before the date of birth
func DatesOutOfOrder(dob, observedAt time.Time) bool {
	by, bm, bd := dob.Date()
	oy, om, od := observedAt.Date()

	birth := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	observed := time.Date(oy, om, od, 0, 0, 0, 0, time.UTC)

	return observed.Before(birth)
}
