package main

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"hrportal/internal/auth"
	"hrportal/internal/config"
	"hrportal/internal/db"
	"hrportal/internal/model"
	"hrportal/internal/seed"
)

// Sample records for development environments. The seeder is idempotent:
// existing rows (matched by email) are left alone.
var sampleEmployees = []model.Employee{
	{FirstName: "Amina", LastName: "Verma", Email: "amina.verma@hrportal.local", Position: "Farm Supervisor", Department: "Operations"},
	{FirstName: "Rahul", LastName: "Singh", Email: "rahul.singh@hrportal.local", Position: "Field Worker", Department: "Operations"},
	{FirstName: "Priya", LastName: "Nair", Email: "priya.nair@hrportal.local", Position: "HR Coordinator", Department: "Human Resources"},
}

type sampleUser struct {
	Email    string
	Password string
	FullName string
	Employee string // employee email to link
	Roles    []string
}

var sampleUsers = []sampleUser{
	{Email: "hr@hrportal.local", Password: "hrpassword", FullName: "Priya Nair", Employee: "priya.nair@hrportal.local", Roles: []string{"hr", "employee"}},
	{Email: "manager@hrportal.local", Password: "managerpassword", FullName: "Amina Verma", Employee: "amina.verma@hrportal.local", Roles: []string{"manager", "employee"}},
	{Email: "worker@hrportal.local", Password: "workerpassword", FullName: "Rahul Singh", Employee: "rahul.singh@hrportal.local", Roles: []string{"employee"}},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.Employee{},
		&model.User{},
		&model.Role{},
		&model.Permission{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	if err := seed.EnsureRoles(ctx, gormDB); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}
	log.Println("Role and permission catalog seeded")

	if err := seed.EnsureAdmin(ctx, gormDB, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	if err := seedSampleData(ctx, gormDB); err != nil {
		log.Fatalf("Failed to seed sample data: %v", err)
	}
	log.Println("Seed completed")
}

func seedSampleData(ctx context.Context, gormDB *gorm.DB) error {
	employeesByEmail := make(map[string]uint)
	for _, sample := range sampleEmployees {
		var employee model.Employee
		err := gormDB.WithContext(ctx).Where("email = ?", sample.Email).First(&employee).Error
		if err == gorm.ErrRecordNotFound {
			employee = sample
			employee.HireDate = time.Now()
			if err := gormDB.WithContext(ctx).Create(&employee).Error; err != nil {
				return err
			}
			log.Printf("Created employee %s", employee.Email)
		} else if err != nil {
			return err
		}
		employeesByEmail[employee.Email] = employee.ID
	}

	for _, sample := range sampleUsers {
		var existing model.User
		err := gormDB.WithContext(ctx).Where("email = ?", sample.Email).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		hash, err := auth.HashPassword(sample.Password)
		if err != nil {
			return err
		}

		user := model.User{
			Email:        sample.Email,
			PasswordHash: hash,
			FullName:     sample.FullName,
			IsActive:     true,
		}
		if employeeID, ok := employeesByEmail[sample.Employee]; ok {
			user.EmployeeID = &employeeID
		}
		for _, roleName := range sample.Roles {
			var role model.Role
			if err := gormDB.WithContext(ctx).Where("name = ?", roleName).First(&role).Error; err != nil {
				continue
			}
			user.Roles = append(user.Roles, role)
		}

		if err := gormDB.WithContext(ctx).Create(&user).Error; err != nil {
			return err
		}
		log.Printf("Created user %s with roles %v", user.Email, sample.Roles)
	}
	return nil
}
