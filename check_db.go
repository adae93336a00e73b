package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"backoffice/internal/app/ds"
	"backoffice/internal/app/dsn"
)

// quick connectivity probe: lists the stored vouchers
func main() {
	_ = godotenv.Load()

	db, err := gorm.Open(postgres.Open(dsn.FromEnv()), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var vouchers []ds.Voucher
	err = db.Order("id").Find(&vouchers).Error
	if err != nil {
		log.Fatal("Failed to get vouchers:", err)
	}

	fmt.Println("Vouchers in database:")
	for _, v := range vouchers {
		fmt.Printf("ID: %d, Numero: %s, CAE: %s, Total: %s %s\n",
			v.ID, v.NumeroCompleto, v.CAE, v.ImporteTotal.StringFixed(2), v.Moneda)
	}
}
