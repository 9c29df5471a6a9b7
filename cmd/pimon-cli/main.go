// pimon-cli talks to a running pimon server over its REST API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	prompt "github.com/c-bata/go-prompt"
	"github.com/temoto/pimon/helpers/cli"
)

var addr string

func main() {
	flagAddr := flag.String("addr", "http://127.0.0.1:3030", "pimon server address")
	flag.Parse()
	addr = strings.TrimRight(*flagAddr, "/")

	cli.MainLoop("pimon", execute, complete)
}

var suggests = []prompt.Suggest{
	{Text: "status", Description: "full system status"},
	{Text: "sensor", Description: "last sensor reading"},
	{Text: "display", Description: "current display frame"},
	{Text: "led on", Description: "turn LED on"},
	{Text: "led off", Description: "turn LED off"},
	{Text: "ping", Description: "check server is up"},
	{Text: "help", Description: "show commands"},
}

func complete(d prompt.Document) []prompt.Suggest {
	return prompt.FilterHasPrefix(suggests, d.TextBeforeCursor(), true)
}

func execute(line string) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}
	switch words[0] {
	case "ping":
		get("/")
	case "status":
		get("/status")
	case "sensor":
		get("/sensor")
	case "display":
		showDisplay()
	case "led":
		if len(words) != 2 || (words[1] != "on" && words[1] != "off") {
			fmt.Println("usage: led on|off")
			return
		}
		post("/led", fmt.Sprintf(`{"state": %t}`, words[1] == "on"))
	case "help":
		for _, s := range suggests {
			fmt.Printf("%-10s %s\n", s.Text, s.Description)
		}
	default:
		fmt.Printf("unknown command %q, try help\n", words[0])
	}
}

var client = &http.Client{Timeout: 5 * time.Second}

func get(path string) {
	resp, err := client.Get(addr + path)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	printBody(resp)
}

func post(path, body string) {
	resp, err := client.Post(addr+path, "application/json", strings.NewReader(body))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	printBody(resp)
}

func printBody(resp *http.Response) {
	defer resp.Body.Close()
	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("http %s\n", resp.Status)
	}
	if json.Valid(b) {
		buf := bytes.Buffer{}
		if json.Indent(&buf, b, "", "  ") == nil {
			fmt.Println(buf.String())
			return
		}
	}
	fmt.Println(string(b))
}

// showDisplay unpacks display_content so the frame border lines up.
func showDisplay() {
	resp, err := client.Get(addr + "/display")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer resp.Body.Close()
	var v struct {
		DisplayContent string `json:"display_content"`
		Mode           string `json:"mode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("mode=%s\n%s", v.Mode, v.DisplayContent)
}
