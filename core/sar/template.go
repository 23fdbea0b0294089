package sar

import (
	"fmt"
	"strings"
	"time"
)

// criteriaTemplate is the NBA SAR rubric every department application
// starts from: 7 criteria worth 100 marks each.
type sectionTemplate struct {
	number   string
	title    string
	maxMarks int
}

type criteriaTemplate struct {
	number      int
	title       string
	description string
	sections    []sectionTemplate
}

var sarTemplate = []criteriaTemplate{
	{
		number:      1,
		title:       "Vision, Mission and Program Educational Objectives",
		description: "Assessment of institutional vision, mission, and program educational objectives",
		sections: []sectionTemplate{
			{"1.1", "Vision and Mission of the Institution", 25},
			{"1.2", "Vision and Mission of the Department", 25},
			{"1.3", "Program Educational Objectives (PEOs)", 25},
			{"1.4", "Assessment of PEOs", 25},
		},
	},
	{
		number:      2,
		title:       "Program Outcomes and Assessment",
		description: "Assessment of program outcomes and their evaluation methods",
		sections: []sectionTemplate{
			{"2.1", "Program Outcomes (POs)", 30},
			{"2.2", "Program Specific Outcomes (PSOs)", 30},
			{"2.3", "Assessment of Program Outcomes", 40},
		},
	},
	{
		number:      3,
		title:       "Curriculum Design and Development",
		description: "Assessment of curriculum design, development and implementation",
		sections: []sectionTemplate{
			{"3.1", "Curriculum Design Process", 25},
			{"3.2", "Course Structure and Syllabus", 25},
			{"3.3", "Curriculum Implementation", 25},
			{"3.4", "Curriculum Review and Update", 25},
		},
	},
	{
		number:      4,
		title:       "Students Performance and Assessment",
		description: "Assessment of student performance evaluation methods and outcomes",
		sections: []sectionTemplate{
			{"4.1", "Student Admission Process", 20},
			{"4.2", "Assessment Methods", 30},
			{"4.3", "Student Performance Analysis", 30},
			{"4.4", "Student Support Services", 20},
		},
	},
	{
		number:      5,
		title:       "Faculty Information and Contributions",
		description: "Assessment of faculty qualifications, contributions and development",
		sections: []sectionTemplate{
			{"5.1", "Faculty Profile and Qualifications", 30},
			{"5.2", "Faculty Development Programs", 25},
			{"5.3", "Research and Publications", 25},
			{"5.4", "Industry Interaction", 20},
		},
	},
	{
		number:      6,
		title:       "Facilities and Technical Support",
		description: "Assessment of infrastructure, facilities and technical support",
		sections: []sectionTemplate{
			{"6.1", "Infrastructure and Facilities", 30},
			{"6.2", "Laboratory Facilities", 25},
			{"6.3", "Library and Information Resources", 25},
			{"6.4", "Computing and IT Support", 20},
		},
	},
	{
		number:      7,
		title:       "Continuous Improvement",
		description: "Assessment of continuous improvement processes and outcomes",
		sections: []sectionTemplate{
			{"7.1", "Quality Assurance System", 25},
			{"7.2", "Feedback Mechanism", 25},
			{"7.3", "Action Taken Reports", 25},
			{"7.4", "Best Practices and Innovations", 25},
		},
	},
}

// NewCriteria instantiates a fresh copy of the SAR rubric for a new
// application. Each call returns independent slices so applications never
// share section state.
func NewCriteria(now time.Time) []Criteria {
	criteria := make([]Criteria, 0, len(sarTemplate))
	for _, ct := range sarTemplate {
		c := Criteria{
			ID:             fmt.Sprintf("criteria-%d", ct.number),
			CriteriaNumber: ct.number,
			Title:          ct.title,
			Description:    ct.description,
			MaxMarks:       100,
			TotalMarks:     100,
			Sections:       make([]Section, 0, len(ct.sections)),
		}
		for _, st := range ct.sections {
			c.Sections = append(c.Sections, Section{
				ID:            "section-" + strings.ReplaceAll(st.number, ".", "-"),
				SectionNumber: st.number,
				Title:         st.title,
				MaxMarks:      st.maxMarks,
				Attachments:   []string{},
				LastModified:  now,
			})
		}
		criteria = append(criteria, c)
	}
	return criteria
}

// MaxOverallMarks sums the rubric's criteria marks (700 for the standard
// template, 0 for a criteria-less application).
func MaxOverallMarks(criteria []Criteria) int {
	var total int
	for i := range criteria {
		total += criteria[i].MaxMarks
	}
	return total
}
