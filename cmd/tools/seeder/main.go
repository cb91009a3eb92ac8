package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedProducts(db)
	seedCustomers(db)
	seedContracts(db)
	seedPriceRules(db)
	seedVolumeTiers(db)

	log.Println("Seeding completed successfully!")
}

type seedProduct struct {
	Code      string
	Category  string
	ListPrice int64
	Stock     int
	Tags      []string
}

// Category slugs map onto fixed UUIDs so reruns stay idempotent.
var categoryIDs = map[string]string{
	"electronics": "11111111-1111-1111-1111-111111111111",
	"fashion":     "22222222-2222-2222-2222-222222222222",
	"groceries":   "33333333-3333-3333-3333-333333333333",
}

func seedProducts(db *sql.DB) {
	products := []seedProduct{
		{"SKU-TV-55", "electronics", 7_500_000_00, 25, []string{"clearance"}},
		{"SKU-LAPTOP-14", "electronics", 12_000_000_00, 12, nil},
		{"SKU-PHONE-PRO", "electronics", 15_500_000_00, 40, []string{"flagship"}},
		{"SKU-HEADSET-BT", "electronics", 850_000_00, 150, []string{"clearance", "audio"}},
		{"SKU-TSHIRT-M", "fashion", 120_000_00, 300, []string{"basics"}},
		{"SKU-JACKET-L", "fashion", 450_000_00, 80, nil},
		{"SKU-SNEAKER-42", "fashion", 980_000_00, 60, []string{"basics"}},
		{"SKU-RICE-5KG", "groceries", 78_000_00, 500, []string{"staple"}},
		{"SKU-OIL-2L", "groceries", 52_000_00, 420, []string{"staple"}},
		{"SKU-COFFEE-1KG", "groceries", 145_000_00, 200, nil},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		var id string
		err := db.QueryRow(`
			INSERT INTO products (code, category_id, list_price, stock)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO UPDATE SET
				category_id = EXCLUDED.category_id,
				list_price  = EXCLUDED.list_price,
				stock       = EXCLUDED.stock
			RETURNING id;
		`, p.Code, categoryIDs[p.Category], p.ListPrice, p.Stock).Scan(&id)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Code, err)
			continue
		}
		for _, tag := range p.Tags {
			if _, err := db.Exec(`
				INSERT INTO product_tags (product_id, tag)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING;
			`, id, tag); err != nil {
				log.Printf("Failed to seed tag %s for %s: %v", tag, p.Code, err)
			}
		}
	}
}

// Customer IDs are fixed so contract seeding can reference them directly.
var customerIDs = map[string]string{
	"PT Maju Bersama":    "aaaaaaaa-0000-0000-0000-000000000001",
	"CV Sumber Rejeki":   "aaaaaaaa-0000-0000-0000-000000000002",
	"Toko Berkah Jaya":   "aaaaaaaa-0000-0000-0000-000000000003",
	"Warung Bu Darmi":    "aaaaaaaa-0000-0000-0000-000000000004",
	"PT Sinar Abadi":     "aaaaaaaa-0000-0000-0000-000000000005",
	"UD Karya Mandiri":   "aaaaaaaa-0000-0000-0000-000000000006",
	"Koperasi Sejahtera": "aaaaaaaa-0000-0000-0000-000000000007",
}

func seedCustomers(db *sql.DB) {
	fmt.Println("Seeding Customers...")
	for name, id := range customerIDs {
		if _, err := db.Exec(`
			INSERT INTO customers (id, name)
			VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;
		`, id, name); err != nil {
			log.Printf("Failed to seed customer %s: %v", name, err)
		}
	}
}

func seedContracts(db *sql.DB) {
	contracts := []struct {
		Customer string
		Product  string
		NetPrice int64
	}{
		{"PT Maju Bersama", "SKU-TV-55", 6_900_000_00},
		{"PT Maju Bersama", "SKU-LAPTOP-14", 11_200_000_00},
		{"CV Sumber Rejeki", "SKU-RICE-5KG", 71_000_00},
		{"Koperasi Sejahtera", "SKU-OIL-2L", 47_500_00},
	}

	fmt.Println("Seeding Contract Prices...")
	for _, c := range contracts {
		if _, err := db.Exec(`
			INSERT INTO contract_prices (customer_id, product_id, net_price, effective_from, is_active)
			SELECT $1, p.id, $2, now() - interval '30 days', TRUE
			FROM products p
			WHERE p.code = $3
			ON CONFLICT DO NOTHING;
		`, customerIDs[c.Customer], c.NetPrice, c.Product); err != nil {
			log.Printf("Failed to seed contract for %s/%s: %v", c.Customer, c.Product, err)
		}
	}
}

func seedPriceRules(db *sql.DB) {
	rules := []struct {
		Scope    string
		SKU      sql.NullString
		Category sql.NullString
		Tag      sql.NullString
		Action   string
		Value    sql.NullInt64
		MinQty   sql.NullInt32
		MaxQty   sql.NullInt32
		Priority int
	}{
		{Scope: "all", Action: "percent", Value: sql.NullInt64{Int64: 500, Valid: true}, Priority: 100},
		{Scope: "tag", Tag: sql.NullString{String: "clearance", Valid: true}, Action: "percent", Value: sql.NullInt64{Int64: 1500, Valid: true}, Priority: 20},
		{Scope: "category", Category: sql.NullString{String: categoryIDs["groceries"], Valid: true}, Action: "percent", Value: sql.NullInt64{Int64: 300, Valid: true}, Priority: 50},
		{Scope: "sku", SKU: sql.NullString{String: "SKU-HEADSET-BT", Valid: true}, Action: "amount", Value: sql.NullInt64{Int64: 100_000_00, Valid: true}, Priority: 10},
		{Scope: "sku", SKU: sql.NullString{String: "SKU-TSHIRT-M", Valid: true}, Action: "net", Value: sql.NullInt64{Int64: 99_000_00, Valid: true}, MinQty: sql.NullInt32{Int32: 3, Valid: true}, MaxQty: sql.NullInt32{Int32: 10, Valid: true}, Priority: 10},
	}

	fmt.Println("Seeding Price Rules...")
	for i, r := range rules {
		if _, err := db.Exec(`
			INSERT INTO price_rules (scope, sku_code, category_id, tag, action_type, action_value, min_qty, max_qty, priority, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE);
		`, r.Scope, r.SKU, r.Category, r.Tag, r.Action, r.Value, r.MinQty, r.MaxQty, r.Priority); err != nil {
			log.Printf("Failed to seed price rule %d: %v", i, err)
		}
	}
}

func seedVolumeTiers(db *sql.DB) {
	tiers := []struct {
		Scope    string
		SKU      sql.NullString
		Category sql.NullString
		MinQty   int
		Bps      sql.NullInt32
		Amount   sql.NullInt64
	}{
		{Scope: "sku", SKU: sql.NullString{String: "SKU-RICE-5KG", Valid: true}, MinQty: 10, Bps: sql.NullInt32{Int32: 500, Valid: true}},
		{Scope: "sku", SKU: sql.NullString{String: "SKU-RICE-5KG", Valid: true}, MinQty: 50, Bps: sql.NullInt32{Int32: 1200, Valid: true}},
		{Scope: "sku", SKU: sql.NullString{String: "SKU-OIL-2L", Valid: true}, MinQty: 24, Amount: sql.NullInt64{Int64: 4_000_00, Valid: true}},
		{Scope: "category", Category: sql.NullString{String: categoryIDs["electronics"], Valid: true}, MinQty: 5, Bps: sql.NullInt32{Int32: 800, Valid: true}},
	}

	fmt.Println("Seeding Volume Tiers...")
	for i, t := range tiers {
		if _, err := db.Exec(`
			INSERT INTO volume_tiers (scope, sku_code, category_id, min_qty, discount_bps, discount_amount, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE);
		`, t.Scope, t.SKU, t.Category, t.MinQty, t.Bps, t.Amount); err != nil {
			log.Printf("Failed to seed volume tier %d: %v", i, err)
		}
	}
}
