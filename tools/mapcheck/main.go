package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lumpybrain/DedMult/internal/engine"
	"github.com/lumpybrain/DedMult/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	switch os.Args[1] {
	case "demo":
		data, err := json.MarshalIndent(engine.DemoLayout(), "", "  ")
		if err != nil {
			fmt.Printf("Encode failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	case "check":
		if len(os.Args) < 3 {
			fmt.Println("Usage: mapcheck check <map.json>")
			return
		}
		layout, err := engine.LoadLayout(os.Args[2])
		if err != nil {
			fmt.Printf("Invalid map: %v\n", err)
			os.Exit(1)
		}
		g, err := layout.Build(1)
		if err != nil {
			fmt.Printf("Invalid map: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK: %d nodes, %d lanes, %d ships\n", len(g.AllNodes()), len(g.Lanes()), len(g.AllShips()))
	case "buildid":
		if len(os.Args) < 3 {
			fmt.Println("Usage: mapcheck buildid <YYYY-MM-DD>")
			return
		}
		id, err := version.BuildID(os.Args[2])
		if err != nil {
			fmt.Printf("Invalid date: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(id)
	default:
		printHelp()
	}
}

func printHelp() {
	fmt.Println(`Map Utility - проверка карт галактики
Commands:
  demo                   - вывести демонстрационную карту в JSON
  check <map.json>       - загрузить карту и проверить её
  buildid <YYYY-MM-DD>   - номер сборки для даты`)
}
