package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/claimbridge/claimbridge/internal/domain"
)

func printJSON(v any) error {
	b, err := jsonMarshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(b))
	return err
}

func printKV(w io.Writer, rows [][2]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	_ = tw.Flush()
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "no results")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// truncate keeps table cells on one line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printClaims(w io.Writer, items []domain.Claim) {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{formatID(c.ID), c.Date, string(c.Status), c.ClaimantName, truncate(c.Summary, 48)})
	}
	printTable(w, []string{"ID", "DATE", "STATUS", "CLAIMANT", "SUMMARY"}, rows)
}

func printClaimDetail(w io.Writer, c domain.Claim, notes []domain.ClaimNote) {
	printKV(w, [][2]string{
		{"id", formatID(c.ID)},
		{"claimant", c.ClaimantName},
		{"date", c.Date},
		{"status", string(c.Status)},
		{"summary", c.Summary},
		{"created", formatTime(c.CreatedAt)},
	})
	_, _ = fmt.Fprintf(w, "\n%s\n\n", c.Details)
	printNotes(w, notes)
}

func printNotes(w io.Writer, items []domain.ClaimNote) {
	rows := make([][]string, 0, len(items))
	for _, n := range items {
		author := "Unknown author"
		if n.AuthorName != nil {
			author = *n.AuthorName
		}
		rows = append(rows, []string{formatID(n.ID), formatTime(n.Timestamp), author, truncate(n.Note, 64)})
	}
	printTable(w, []string{"ID", "TIME", "AUTHOR", "NOTE"}, rows)
}

func printAdmins(w io.Writer, items []domain.AdminUser) {
	rows := make([][]string, 0, len(items))
	for _, a := range items {
		rows = append(rows, []string{formatID(a.ID), a.Name, a.Email, string(a.Role), formatTime(a.CreatedAt)})
	}
	printTable(w, []string{"ID", "NAME", "EMAIL", "ROLE", "CREATED"}, rows)
}
