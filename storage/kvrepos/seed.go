package kvrepos

import (
	"time"

	"github.com/compliedu/backend/core/institution"
	"github.com/compliedu/backend/core/sar"
	"github.com/compliedu/backend/core/user"
)

// The default dataset served when a collection is missing or unreadable.
// Mirrors the demo portal data so a fresh install is immediately usable.

var seededAt = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// ResetToSeed overwrites every collection with the default dataset. Used by
// the admin CLI to restore a known-good state.
func (db *DB) ResetToSeed() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.writeCollection(institutionsKey, seedInstitutions()); err != nil {
		return err
	}
	if err := db.writeCollection(usersKey, seedUsers()); err != nil {
		return err
	}
	return db.writeCollection(applicationsKey, seedApplications())
}

func seedInstitutions() []institution.Institution {
	return []institution.Institution{
		{
			ID:                  "1",
			Name:                "RGUKT Basar",
			InstitutionCode:     "RGUKT",
			InstitutionCategory: "Engineering",
			TierCategory:        "Tier-II",
			Address:             "Basar, Nirmal District, Telangana",
			ContactEmail:        "admin@rguktbasar.ac.in",
			ContactPhone:        "+91-8734-123456",
			EstablishedYear:     2008,
			CoordinatorName:     "Dr. Priya Sharma",
			CoordinatorEmail:    "coordinator@rguktbasar.ac.in",
			AccreditationStatus: institution.StatusPending,
			CreatedAt:           seededAt,
			UpdatedAt:           seededAt,
		},
		{
			ID:                  "2",
			Name:                "VIT University",
			InstitutionCode:     "VIT",
			InstitutionCategory: "Engineering",
			TierCategory:        "Tier-I",
			Address:             "Vellore, Tamil Nadu",
			ContactEmail:        "admin@vit.ac.in",
			ContactPhone:        "+91-416-220-2020",
			EstablishedYear:     1984,
			CoordinatorName:     "Dr. Arun Kumar",
			CoordinatorEmail:    "coordinator@vit.ac.in",
			AccreditationStatus: institution.StatusAccredited,
			CreatedAt:           seededAt.Add(5 * 24 * time.Hour),
			UpdatedAt:           seededAt.Add(5 * 24 * time.Hour),
		},
		{
			ID:                  "3",
			Name:                "IIT Hyderabad",
			InstitutionCode:     "IITH",
			InstitutionCategory: "Engineering",
			TierCategory:        "Tier-I",
			Address:             "Kandi, Sangareddy, Telangana",
			ContactEmail:        "admin@iith.ac.in",
			ContactPhone:        "+91-40-2301-6000",
			EstablishedYear:     2008,
			CoordinatorName:     "Dr. Meera Nair",
			CoordinatorEmail:    "coordinator@iith.ac.in",
			AccreditationStatus: institution.StatusAccredited,
			CreatedAt:           seededAt.Add(17 * 24 * time.Hour),
			UpdatedAt:           seededAt.Add(17 * 24 * time.Hour),
		},
	}
}

func seedUsers() []user.User {
	newUser := func(id, name, email, role, instID, password string) user.User {
		usr := user.User{
			ID:            id,
			Name:          name,
			Email:         email,
			Role:          role,
			InstitutionID: instID,
			IsActive:      true,
			CreatedAt:     seededAt,
			UpdatedAt:     seededAt,
		}
		_ = usr.SetPassword(password)
		return usr
	}
	return []user.User{
		newUser("1", "Portal Admin", "admin@compliedu.com", user.RoleAdmin, "", "admin123"),
		newUser("2", "RGUKT Coordinator", "rgukt@example.com", user.RoleInstitute, "1", "admin123"),
		newUser("3", "VIT Coordinator", "vit@example.com", user.RoleInstitute, "2", "vit123"),
		newUser("4", "IIT Coordinator", "iit@example.com", user.RoleInstitute, "3", "iit123"),
	}
}

func seedApplications() []sar.Application {
	instInfo := sar.Application{
		ID:                   "sar-1",
		ApplicationID:        "RGUKT-IS-20240115",
		InstitutionID:        "1",
		DepartmentID:         institution.InstituteInfoDepartment,
		DepartmentName:       "Institute Information",
		ApplicationStartDate: seededAt,
		ApplicationEndDate:   seededAt.Add(90 * 24 * time.Hour),
		Status:               sar.StatusCompleted,
		CompletionPercentage: 100,
		Criteria:             []sar.Criteria{},
		LastModified:         seededAt,
	}

	cse := sar.Application{
		ID:                   "sar-2",
		ApplicationID:        "RGUKT-CSE-20240115",
		InstitutionID:        "1",
		DepartmentID:         "CSE",
		DepartmentName:       "Computer Science and Engineering",
		ApplicationStartDate: seededAt,
		ApplicationEndDate:   seededAt.Add(90 * 24 * time.Hour),
		Criteria:             sar.NewCriteria(seededAt),
		MaxOverallMarks:      700,
		LastModified:         seededAt,
	}
	// a few filled sections so the demo dashboard is not all zeros
	cse.Criteria[0].Sections[0].Content = "The institution aims to provide world-class technical education to rural youth."
	cse.Criteria[0].Sections[1].Content = "The department strives for excellence in computing education and research."
	cse.Normalize()

	ece := sar.Application{
		ID:                   "sar-3",
		ApplicationID:        "RGUKT-ECE-20240115",
		InstitutionID:        "1",
		DepartmentID:         "ECE",
		DepartmentName:       "Electronics and Communication Engineering",
		ApplicationStartDate: seededAt,
		ApplicationEndDate:   seededAt.Add(90 * 24 * time.Hour),
		Status:               sar.StatusDraft,
		Criteria:             sar.NewCriteria(seededAt),
		MaxOverallMarks:      700,
		LastModified:         seededAt,
	}

	return []sar.Application{instInfo, cse, ece}
}
