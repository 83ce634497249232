package cohort

import "github.com/shopspring/decimal"

// Contribution is one cohort's share of a month's Accrual.
type Contribution struct {
	StartMonth        int
	MonthsInTreatment int
	Patients          decimal.Decimal
	Administrations   decimal.Decimal
}

// Breakdown lists the contribution of every cohort in treatment during
// currentMonth, oldest cohort first. Summing Patients and Administrations
// gives exactly Accrue(currentMonth, p, rule).
func Breakdown(currentMonth int, p Params, rule Rule) []Contribution {
	var out []Contribution
	for startMonth := 1; startMonth <= currentMonth; startMonth++ {
		monthsInTreatment := currentMonth - startMonth + 1
		if !InTreatment(monthsInTreatment, p.AverageTreatmentDuration) {
			continue
		}

		patients := p.NewPatientsPerMonth.Mul(rule.Retained(monthsInTreatment))
		out = append(out, Contribution{
			StartMonth:        startMonth,
			MonthsInTreatment: monthsInTreatment,
			Patients:          patients,
			Administrations:   patients.Mul(p.AdministrationsPerPatientPerMonth),
		})
	}
	return out
}

// Sum folds contributions back into an Accrual.
func Sum(contributions []Contribution) Accrual {
	acc := Accrual{FullPayers: decimal.Zero, AllAdmins: decimal.Zero}
	for _, c := range contributions {
		acc.FullPayers = acc.FullPayers.Add(c.Patients)
		acc.AllAdmins = acc.AllAdmins.Add(c.Administrations)
	}
	return acc
}
