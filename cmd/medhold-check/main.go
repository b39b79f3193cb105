// medhold-check is a smoke-check tool: it hits a running medhold-data instance
// over HTTP and prints the current state of the collections.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"medhold-data/internal/client"
)

func main() {
	var addr = flag.String("addr", "http://localhost:8080", "Base URL of the medhold-data service")
	var search = flag.String("search", "", "Personnel search filter (name, personal number or unit)")
	var showProblems = flag.Bool("problems", false, "Show open problems")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.New(*addr)

	stats, err := c.GetStats(ctx)
	if err != nil {
		log.Fatalf("Cannot reach %s: %v", *addr, err)
	}
	fmt.Printf("Всего: %d  В ПВД: %d  В строю: %d  Госпитализация: %d  Отпуск: %d  Убыл: %d\n",
		stats.Total, stats.InHolding, stats.FitForDuty, stats.Hospitalized, stats.OnLeave, stats.Departed)
	fmt.Printf("Открытых проблем: %d (ПВД>30: %d, госпитализация>30: %d, просроченные отпуска: %d)\n\n",
		stats.OpenProblems, stats.LongHolding, stats.LongHospital, stats.OverdueLeaves)

	list, err := c.ListPersonnel(ctx, *search, "", "")
	if err != nil {
		log.Fatalf("ListPersonnel failed: %v", err)
	}
	for _, p := range list.Personnel {
		fmt.Printf("%-12s %-35s %-20s %-16s %3d дн.\n",
			p.PersonalNumber, p.FullName, p.Unit, p.CurrentStatus, p.DaysInHolding)
	}

	if *showProblems {
		problems, err := c.ListProblems(ctx)
		if err != nil {
			log.Fatalf("ListProblems failed: %v", err)
		}
		fmt.Println()
		for _, p := range problems {
			fmt.Printf("[%s] %s — %s: %s\n", p.Severity, p.FullName, p.IssueType, p.Description)
		}
	}
}
