package domain

// CheckService validates circle records and lays them out on a figure
type CheckService interface {
	Check(records []CircleRecord) (*Report, error)
}
