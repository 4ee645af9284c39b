package inventory

// ProblemType classifies a manually flagged purchase problem.
type ProblemType string

const (
	ProblemLostPackage        ProblemType = "lost_package"
	ProblemDamagedGoods       ProblemType = "damaged_goods"
	ProblemNonConformingGoods ProblemType = "non_conforming_goods"
	ProblemSellerDispute      ProblemType = "seller_dispute"
	ProblemDelayedDelivery    ProblemType = "delayed_delivery"
	ProblemOther              ProblemType = "other"
)

var problemTitles = map[ProblemType]string{
	ProblemLostPackage:        "Lost package",
	ProblemDamagedGoods:       "Damaged goods",
	ProblemNonConformingGoods: "Non-conforming goods",
	ProblemSellerDispute:      "Seller dispute",
	ProblemDelayedDelivery:    "Delayed delivery",
	ProblemOther:              "Problem reported",
}

// Valid reports whether t is a known problem type.
func (t ProblemType) Valid() bool {
	_, ok := problemTitles[t]
	return ok
}

// Title is the human-readable alert text.
func (t ProblemType) Title() string {
	if title, ok := problemTitles[t]; ok {
		return title
	}
	return problemTitles[ProblemOther]
}
