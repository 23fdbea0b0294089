package institution

import "errors"

// InstituteInfoDepartment is the sentinel department id of the special
// "Institute Information" application, which has no criteria rubric.
const InstituteInfoDepartment = "institute-info"

// InstituteInfoCode is the short code used in the human-readable
// application id of an Institute Information application.
const InstituteInfoCode = "IS"

var ErrDepartmentNotFound = errors.New("department not found")

// Department is an entry of the fixed department catalog. Applications are
// created per institution+department.
type Department struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// departmentsByCategory is the fixed catalog keyed by institution category.
var departmentsByCategory = map[string][]Department{
	"Engineering": {
		{Name: "Computer Science and Engineering", Code: "CSE"},
		{Name: "Electronics and Communication Engineering", Code: "ECE"},
		{Name: "Electrical and Electronics Engineering", Code: "EEE"},
		{Name: "Mechanical Engineering", Code: "MECH"},
		{Name: "Civil Engineering", Code: "CIVIL"},
		{Name: "Chemical Engineering", Code: "CHEM"},
		{Name: "Information Technology", Code: "IT"},
		{Name: "Biotechnology", Code: "BT"},
		{Name: "Metallurgical Engineering", Code: "MET"},
		{Name: "Aerospace Engineering", Code: "AERO"},
	},
	"Pharmacy": {
		{Name: "Pharmaceutical Sciences", Code: "PHARM"},
		{Name: "Pharmacy Practice", Code: "PP"},
	},
	"Management": {
		{Name: "Business Administration", Code: "MBA"},
		{Name: "Computer Applications", Code: "MCA"},
	},
}

// ListDepartmentsByCategory returns the catalog departments for an
// institution category; nil for an unknown category.
func ListDepartmentsByCategory(category string) []Department {
	depts := departmentsByCategory[category]
	out := make([]Department, len(depts))
	copy(out, depts)
	return out
}

// GetDepartmentByCode looks up a department across all categories.
func GetDepartmentByCode(code string) (Department, error) {
	for _, depts := range departmentsByCategory {
		for _, d := range depts {
			if d.Code == code {
				return d, nil
			}
		}
	}
	return Department{}, ErrDepartmentNotFound
}
