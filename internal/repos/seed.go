package repos

import (
	"context"
	"log"

	"aaf11/internal/domain"
)

const unsplash = "https://images.unsplash.com/"
const imgQuery = "?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=300"

// SampleProducts is the starter catalog of electronics components.
func SampleProducts() []domain.Product {
	mk := func(name, desc, price string, stock int, img, cat string) domain.Product {
		return domain.Product{
			Name: name, Description: desc, Price: domain.MustMoney(price),
			Stock: stock, Image: unsplash + img + imgQuery, Category: cat,
		}
	}
	return []domain.Product{
		mk("Arduino Uno R3", "Microcontroller board for beginners", "450.00", 25, "photo-1553406830-ef2513450d76", "Development Boards"),
		mk("Half-Size Breadboard", "400 tie-point solderless breadboard", "120.00", 50, "photo-1581833971358-2c8b550f87b3", "Prototyping"),
		mk("LED Assortment Kit", "100pcs mixed color LEDs", "200.00", 30, "photo-1518709268805-4e9042af2176", "Components"),
		mk("Resistor Value Pack", "30 values, 10 of each resistor", "150.00", 40, "photo-1609728476020-4b2b0f6c5e1f", "Components"),
		mk("HC-SR04 Ultrasonic", "Distance measuring sensor module", "180.00", 20, "photo-1611164536892-8b8d6e7b8773", "Sensors"),
		mk("SG90 Servo Motor", "Micro servo for robotics projects", "250.00", 15, "photo-1581833971358-2c8b550f87b3", "Motors"),
		mk("Jumper Wire Set", "120pcs male-to-male wires", "80.00", 60, "photo-1558618666-fcd25c85cd64", "Connectivity"),
		mk("ESP32 DevKit", "WiFi & Bluetooth development board", "600.00", 12, "photo-1553406830-ef2513450d76", "Development Boards"),
	}
}

// SeedProducts inserts every sample product whose name is not in the catalog
// yet and returns how many were added. Safe to run repeatedly.
func SeedProducts(ctx context.Context, products *ProductRepo) (int, error) {
	created := 0
	for _, p := range SampleProducts() {
		exists, err := products.ExistsByName(ctx, p.Name)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if err := products.Create(ctx, &p); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		log.Printf("[seed] inserted %d sample products", created)
	}
	return created, nil
}
