package main

import (
	"fmt"
	"log"
	"os"

	"gripelogger/backend/internal/complaint"
	"gripelogger/backend/internal/config"
	"gripelogger/backend/internal/models"
	"gripelogger/backend/internal/storage"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: grant-role, set-status, stats")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "grant-role":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin grant-role <email> <student|admin>")
			os.Exit(1)
		}
		email, role := os.Args[2], models.Role(os.Args[3])
		if err := grantRole(storageSvc, email, role); err != nil {
			log.Fatalf("Error granting role: %v", err)
		}
		fmt.Printf("User %s now has role %s.\n", email, role)

	case "set-status":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin set-status <complaint_id> <status> [resolution note]")
			os.Exit(1)
		}
		complaintID, status := os.Args[2], models.Status(os.Args[3])
		note := ""
		if len(os.Args) > 4 {
			note = os.Args[4]
		}
		if err := setStatus(storageSvc, complaintID, status, note); err != nil {
			log.Fatalf("Error setting status: %v", err)
		}
		fmt.Printf("Complaint %s is now %s.\n", complaintID, status)

	case "stats":
		counts, err := storageSvc.CountComplaintsByStatus()
		if err != nil {
			log.Fatalf("Error loading stats: %v", err)
		}
		total := counts[models.StatusPending] + counts[models.StatusInProgress] + counts[models.StatusResolved]
		fmt.Printf("total: %d\npending: %d\nin_progress: %d\nresolved: %d\n",
			total, counts[models.StatusPending], counts[models.StatusInProgress], counts[models.StatusResolved])

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func grantRole(s storage.Storage, email string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user with email %s", email)
	}
	return s.SetRoleForUser(user.ID, role)
}

// setStatus applies the same transition rules as the HTTP triage
// endpoint, so the CLI cannot put a complaint into a state the API
// would refuse.
func setStatus(s storage.Storage, complaintID string, status models.Status, note string) error {
	cm, err := s.GetComplaintByID(complaintID)
	if err != nil {
		return err
	}
	if cm == nil {
		return fmt.Errorf("no complaint with id %s", complaintID)
	}

	if err := complaint.CheckTransition(cm.Status, status); err != nil {
		return fmt.Errorf("cannot move complaint from %s to %s", cm.Status, status)
	}

	cm.Status = status
	if note != "" {
		cm.ResolutionNote = note
	}
	return s.UpdateComplaint(cm)
}
