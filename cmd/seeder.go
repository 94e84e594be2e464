package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/vehicle-permit/internal/auth"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
	permitPostgres "github.com/frahmantamala/vehicle-permit/internal/permit/postgres"
	"github.com/frahmantamala/vehicle-permit/internal/user"
	userPostgres "github.com/frahmantamala/vehicle-permit/internal/user/postgres"
)

var (
	clearData   bool
	seedPermits bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the demo accounts and, optionally, sample permit requests.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		ctx := context.Background()

		if clearData {
			if err := clearSeedData(gdb); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared permit requests and users")
		}

		hash, err := auth.HashPassword("password", cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		users := userPostgres.NewUserRepository(gdb)
		accounts := []user.User{
			{NIK: "001", Name: "Budi Karyawan", Role: user.RoleEmployee},
			{NIK: "002", Name: "Sari HR", Role: user.RoleHR},
			{NIK: "003", Name: "Andi Admin", Role: user.RoleAdmin},
		}

		for i := range accounts {
			a := accounts[i]
			existing, err := users.GetByNIK(ctx, a.NIK)
			if err != nil {
				log.Fatalf("failed to look up user %s: %v", a.NIK, err)
			}
			if existing != nil {
				fmt.Printf("user %s already exists; skipping\n", a.NIK)
				continue
			}

			a.PasswordHash = hash
			if err := users.Create(ctx, &a); err != nil {
				log.Fatalf("failed to insert user %s: %v", a.NIK, err)
			}
			fmt.Printf("Seeded %s user: %s\n", a.Role, a.NIK)
		}

		if !seedPermits {
			return
		}

		permits := permitPostgres.NewPermitRepository(gdb)
		existing, err := permits.List(ctx, permit.Filter{})
		if err != nil {
			log.Fatalf("failed to list permits: %v", err)
		}
		if len(existing) > 0 {
			fmt.Println("permit requests already present; skipping samples")
			return
		}

		for _, sample := range samplePermits(time.Now()) {
			p := sample.permit
			if err := permits.Create(ctx, p); err != nil {
				log.Fatalf("failed to insert sample permit: %v", err)
			}
			if sample.outcome != "" {
				if _, err := permits.Decide(ctx, p.ID, sample.outcome, p.DepartureDate, "09:00"); err != nil {
					log.Fatalf("failed to decide sample permit %d: %v", p.ID, err)
				}
			}
		}

		fmt.Println("Sample permit requests seeded successfully")
	},
}

type samplePermit struct {
	permit  *permit.PermitRequest
	outcome permit.Status
}

func samplePermits(now time.Time) []samplePermit {
	today := permit.NewDate(now)
	day := func(offset int) permit.Date {
		return permit.Date{Time: today.AddDate(0, 0, offset)}
	}
	remarks := "Bawa dokumen kontrak"

	return []samplePermit{
		{
			permit: &permit.PermitRequest{
				RequesterName: "Budi Karyawan", NIK: "001", DriverName: "Joko", PlateNumber: "B 1234 XYZ",
				Purpose: "Kunjungan klien", DepartureDate: day(-3), DepartureTime: "08:00",
				ReturnDate: day(-3), ReturnTime: "17:00",
			},
			outcome: permit.StatusApproved,
		},
		{
			permit: &permit.PermitRequest{
				RequesterName: "Budi Karyawan", NIK: "001", DriverName: "Slamet", PlateNumber: "B 5678 ABC",
				Purpose: "Survei lokasi", DepartureDate: day(-1), DepartureTime: "07:30",
				ReturnDate: day(0), ReturnTime: "12:00", Remarks: &remarks,
			},
			outcome: permit.StatusRejected,
		},
		{
			permit: &permit.PermitRequest{
				RequesterName: "Budi Karyawan", NIK: "001", DriverName: "Joko", PlateNumber: "B 1234 XYZ",
				Purpose: "Antar dokumen", DepartureDate: day(2), DepartureTime: "10:00",
				ReturnDate: day(2), ReturnTime: "15:00",
			},
		},
	}
}

func clearSeedData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM permit_requests").Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM users").Error
	})
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
	seedCmd.Flags().BoolVar(&seedPermits, "permits", false, "Also insert sample permit requests")
}
