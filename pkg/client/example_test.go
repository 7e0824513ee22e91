package client_test

import (
	"fmt"
	"log"
	"time"

	"contactdb/pkg/client"
)

// Talks to a server started with "contactdb serve".
func Example() {
	fmt.Println("Connecting to contactdb...")
	cli, err := client.Dial("localhost:9090")
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer cli.Close()

	start := time.Now()
	if err := cli.Add("张三", "13800000001", "同事"); err != nil {
		log.Fatalf("Add failed: %v", err)
	}
	fmt.Printf("Add done in %v\n", time.Since(start))

	start = time.Now()
	found, err := cli.FindByName("张")
	if err != nil {
		log.Fatalf("Find failed: %v", err)
	}
	for _, c := range found {
		fmt.Println(c)
	}
	fmt.Printf("Find done in %v\n", time.Since(start))
}
