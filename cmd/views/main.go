package main

import (
	"fmt"
	"interaction-lab/customid"
	"interaction-lab/runtime"
	"interaction-lab/views"
	"os"
	"strconv"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Prints the worst case custom id length of every view against the platform limit.
func main() {
	registry := runtime.NewRegistry()
	if err := registry.Register(views.All()...); err != nil {
		fmt.Fprintf(os.Stderr, "Registration failed: %v\n", err)
		os.Exit(2)
	}

	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf(" Custom id budget: %d UTF-16 units ", customid.MaxLength)))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Prefix", "Command", "Guild", "Worst case", "Status"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	failed := false
	for _, v := range registry.Views() {
		command, guild := "-", "global"
		if v.Command != nil {
			command = "/" + v.Command.Name
			if v.Command.GuildID != "" {
				guild = v.Command.GuildID
			}
		}
		n, err := v.WorstCaseLength()
		var length, status string
		switch {
		case err != nil:
			length, status = "?", color.FgRed.Render(err.Error())
			failed = true
		case n > customid.MaxLength:
			length, status = strconv.Itoa(n), color.FgRed.Render("too long")
			failed = true
		default:
			length, status = strconv.Itoa(n), color.FgGreen.Render("ok")
		}
		table.Append([]string{v.Prefix, command, guild, length, status})
	}
	table.Render()

	if failed {
		os.Exit(1)
	}
}
