package main

import (
	"bytes"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/goccy/go-json"
)

// searchPage is the part of a hotel search response the load test reads
type searchPage struct {
	Records []domain.Record `json:"records"`
}

// generateRandomName generates a random 6-letter name
func generateRandomName() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	name := make([]byte, 6)
	for i := range name {
		name[i] = letters[rand.Intn(len(letters))]
	}
	// Capitalize first letter
	name[0] = name[0] - 32
	return string(name)
}

// fetchHotelIDs lists the available hotels the bookings are spread across
func fetchHotelIDs(baseURL string) ([]string, error) {
	resp, err := http.Get(baseURL + "/hotels/search?available=true&page_size=100")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var page searchPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode hotels: %w", err)
	}

	ids := make([]string, 0, len(page.Records))
	for _, rec := range page.Records {
		ids = append(ids, rec.ID())
	}
	return ids, nil
}

// randomBooking builds a hotel booking for a random stay of one to five nights
func randomBooking(hotelID string) *domain.HotelBooking {
	name := generateRandomName()
	checkIn := time.Now().AddDate(0, 0, rand.Intn(90)+1)
	checkOut := checkIn.AddDate(0, 0, rand.Intn(5)+1)
	return &domain.HotelBooking{
		BookingInfo: domain.BookingInfo{
			Kind:      domain.BookingHotel,
			SubjectID: hotelID,
			StartDate: checkIn.Format(domain.DateLayout),
			EndDate:   checkOut.Format(domain.DateLayout),
			PartySize: rand.Intn(4) + 1,
			Guest: domain.GuestDetails{
				Name:  name,
				Email: fmt.Sprintf("%s@example.com", strings.ToLower(name)),
			},
		},
		Rooms: rand.Intn(2) + 1,
	}
}

// createBooking sends a POST request to create a booking
func createBooking(baseURL string, booking *domain.HotelBooking) error {
	body, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to marshal booking: %w", err)
	}

	resp, err := http.Post(baseURL+"/bookings", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

func main() {
	// Check command line arguments
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run test_scripts/booking_load.go <number_of_bookings> [server_url]")
		fmt.Println("Example: go run test_scripts/booking_load.go 1000")
		fmt.Println("Example: go run test_scripts/booking_load.go 1000 http://localhost:8080")
		os.Exit(1)
	}

	// Parse number of bookings to create
	numBookings, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Printf("Error: Invalid number of bookings '%s'. Please provide a valid integer.\n", os.Args[1])
		os.Exit(1)
	}
	if numBookings <= 0 {
		fmt.Println("Error: Number of bookings must be greater than 0")
		os.Exit(1)
	}

	// Set server URL (default to localhost:8080)
	serverURL := "http://localhost:8080"
	if len(os.Args) >= 3 {
		serverURL = os.Args[2]
	}

	hotelIDs, err := fetchHotelIDs(serverURL)
	if err != nil {
		fmt.Printf("Error: could not list hotels: %v\n", err)
		os.Exit(1)
	}
	if len(hotelIDs) == 0 {
		fmt.Println("Error: no available hotels to book; start the server with seeding enabled")
		os.Exit(1)
	}

	fmt.Printf("Starting load test: creating %d bookings across %d hotels on %s\n", numBookings, len(hotelIDs), serverURL)
	fmt.Println("Press Ctrl+C to stop early")

	// Track timing and statistics
	startTime := time.Now()
	successCount := 0
	errorCount := 0

	// Report every 10% or at least every request
	reportInterval := max(1, numBookings/10)

	for i := 0; i < numBookings; i++ {
		booking := randomBooking(hotelIDs[rand.Intn(len(hotelIDs))])

		if err := createBooking(serverURL, booking); err != nil {
			errorCount++
			fmt.Printf("Error creating booking %d (%s): %v\n", i+1, booking.Guest.Name, err)
		} else {
			successCount++
		}

		if (i+1)%reportInterval == 0 || i == numBookings-1 {
			elapsed := time.Since(startTime)
			rate := float64(i+1) / elapsed.Seconds()
			fmt.Printf("Progress: %d/%d bookings (%.1f%%) - Rate: %.1f bookings/sec - Success: %d, Errors: %d\n",
				i+1, numBookings, float64(i+1)/float64(numBookings)*100, rate, successCount, errorCount)
		}
	}

	// Final statistics
	totalTime := time.Since(startTime)
	averageRate := float64(numBookings) / totalTime.Seconds()

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("LOAD TEST COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total bookings attempted: %d\n", numBookings)
	fmt.Printf("Successful bookings:      %d\n", successCount)
	fmt.Printf("Failed bookings:          %d\n", errorCount)
	fmt.Printf("Success rate:             %.2f%%\n", float64(successCount)/float64(numBookings)*100)
	fmt.Printf("Total time:               %v\n", totalTime)
	fmt.Printf("Average rate:             %.2f bookings/sec\n", averageRate)
	fmt.Printf("Average time per booking: %v\n", totalTime/time.Duration(numBookings))

	if errorCount > 0 {
		fmt.Printf("\nWarning: %d errors occurred during the load test\n", errorCount)
		os.Exit(1)
	}

	fmt.Println("\nLoad test completed successfully!")
}
