package docgen

import "fmt"

// ChecklistItems returns the fixed line items for the deterministic document
// types. These are assembled entirely from catalog data and project fields;
// no AI call is ever made for them.
func ChecklistItems(docType, module, counterparty string) []string {
	switch docType {
	case "closing_checklist":
		items := []string{
			fmt.Sprintf("Executed signature pages collected from %s", counterparty),
			"Entity good-standing certificate on file",
			"Insurance certificates received and reviewed",
			"Wire instructions verified by callback",
		}
		if cfg, ok := ModuleFor(module); ok {
			for _, dt := range cfg.DocTypes {
				if dt == "closing_checklist" {
					continue
				}
				items = append(items, fmt.Sprintf("%s finalized and reviewed", Title(dt)))
			}
		}
		return items
	case "investor_questionnaire":
		return []string{
			"Investor legal name and jurisdiction of organization",
			"Accredited investor status (Rule 501 category)",
			"Source of funds confirmation",
			"Beneficial ownership disclosure",
			"Tax identification and withholding status",
			"Electronic delivery consent",
		}
	case "capital_call_notice":
		return []string{
			fmt.Sprintf("Capital call issued to %s", counterparty),
			"Payment due within 10 business days of this notice",
			"Wire remittance details attached as Schedule A",
			"Unfunded commitment balance updated upon receipt",
		}
	default:
		return nil
	}
}
