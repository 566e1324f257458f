package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	customerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0a84ff")).Bold(true)
	kitchenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#30d158")).Bold(true)
)

// Model defines the application state
type Model struct {
	mainMenu      list.Model
	inventoryView table.Model
	messageInput  textinput.Model
	addressInput  textinput.Model
	spinner       spinner.Model
	client        *ApiClient
	history       []Message
	lastResult    *OrderResult
	stats         map[string]interface{}
	delivery      bool
	loading       bool
	currentView   string
	error         string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := []list.Item{
		item{title: "Place Order", desc: "Talk to the kitchen and place an order"},
		item{title: "Inventory", desc: "Check ingredient stock"},
		item{title: "Stats", desc: "Order counters since the server started"},
		item{title: "Exit", desc: "Exit the application"},
	}

	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "Order Intake CLI"

	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Ingredient", Width: 24},
		{Title: "Quantity", Width: 10},
		{Title: "Unit", Width: 8},
	}
	inventoryTable := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	messageInput := textinput.New()
	messageInput.Placeholder = "I'd like a margherita pizza..."
	messageInput.Focus()
	messageInput.CharLimit = 500
	messageInput.Width = 60

	addressInput := textinput.New()
	addressInput.Placeholder = "Delivery address"
	addressInput.CharLimit = 200
	addressInput.Width = 60

	return Model{
		mainMenu:      mainMenu,
		inventoryView: inventoryTable,
		messageInput:  messageInput,
		addressInput:  addressInput,
		spinner:       s,
		client:        NewApiClient(),
		currentView:   "main",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.mainMenu.SetSize(msg.Width-h, msg.Height-v)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.currentView != "order" {
				return m, tea.Quit
			}
		case "esc":
			if m.currentView != "main" {
				m.currentView = "main"
				m.error = ""
				return m, nil
			}
		case "ctrl+t":
			if m.currentView == "order" {
				m.delivery = !m.delivery
				if !m.delivery {
					m.addressInput.Blur()
					m.messageInput.Focus()
				}
				return m, nil
			}
		case "tab":
			if m.currentView == "order" && m.delivery {
				if m.messageInput.Focused() {
					m.messageInput.Blur()
					m.addressInput.Focus()
				} else {
					m.addressInput.Blur()
					m.messageInput.Focus()
				}
				return m, nil
			}
		case "ctrl+n":
			if m.currentView == "order" {
				m.history = nil
				m.lastResult = nil
				m.error = ""
				return m, nil
			}
		case "enter":
			switch m.currentView {
			case "main":
				if selected, ok := m.mainMenu.SelectedItem().(item); ok {
					switch selected.title {
					case "Exit":
						return m, tea.Quit
					case "Place Order":
						m.currentView = "order"
						m.messageInput.Focus()
						return m, nil
					case "Inventory":
						m.currentView = "inventory"
						m.loading = true
						return m, fetchInventory(m.client)
					case "Stats":
						m.currentView = "stats"
						m.loading = true
						return m, fetchStats(m.client)
					}
				}
			case "order":
				if m.loading {
					return m, nil
				}
				text := strings.TrimSpace(m.messageInput.Value())
				if text == "" {
					m.error = "Please enter a message"
					return m, nil
				}
				req := &OrderRequest{Message: text, History: m.history}
				if m.delivery {
					req.DeliveryAddress = strings.TrimSpace(m.addressInput.Value())
				}
				m.loading = true
				m.error = ""
				m.messageInput.SetValue("")
				return m, placeOrder(m.client, req)
			}
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case orderResultMsg:
		m.loading = false
		m.lastResult = msg.result
		m.history = msg.result.Messages
		return m, nil
	case inventoryMsg:
		m.loading = false
		m.inventoryView.SetRows(inventoryRows(msg.items))
		return m, nil
	case statsMsg:
		m.loading = false
		m.stats = msg.stats
		return m, nil
	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "inventory":
		m.inventoryView, cmd = m.inventoryView.Update(msg)
	case "order":
		if m.addressInput.Focused() {
			m.addressInput, cmd = m.addressInput.Update(msg)
		} else {
			m.messageInput, cmd = m.messageInput.Update(msg)
		}
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	var view string
	switch m.currentView {
	case "main":
		return docStyle.Render(m.mainMenu.View())
	case "order":
		view = titleStyle.Render("Place Order") + "\n\n" + orderView(m)
	case "inventory":
		view = titleStyle.Render("Inventory") + "\n\n"
		if m.loading {
			view += m.spinner.View() + " Loading inventory..."
		} else {
			view += m.inventoryView.View()
		}
		view += "\n\nPress 'esc' to go back"
	case "stats":
		view = titleStyle.Render("Stats") + "\n\n"
		if m.loading {
			view += m.spinner.View() + " Loading stats..."
		} else {
			view += statsView(m.stats)
		}
		view += "\nPress 'esc' to go back"
	default:
		return "Loading..."
	}

	if m.error != "" {
		view += "\n" + errorStyle.Render(m.error)
	}
	return docStyle.Render(view)
}

func orderView(m Model) string {
	var b strings.Builder

	mode := infoStyle.Render("Pickup")
	if m.delivery {
		mode = infoStyle.Render("Delivery")
	}
	b.WriteString("Mode: " + mode + "\n\n")

	for _, msg := range m.history {
		switch msg.Role {
		case "user":
			b.WriteString(customerStyle.Render("You: ") + msg.Content + "\n")
		case "assistant":
			b.WriteString(kitchenStyle.Render("Kitchen: ") + msg.Content + "\n")
		}
	}
	if len(m.history) > 0 {
		b.WriteString("\n")
	}

	if m.lastResult != nil {
		b.WriteString(resultView(m.lastResult) + "\n")
	}

	b.WriteString(m.messageInput.View() + "\n")
	if m.delivery {
		b.WriteString(m.addressInput.View() + "\n")
	}
	if m.loading {
		b.WriteString(m.spinner.View() + " Processing order...\n")
	}

	help := "\n'enter' to send, 'ctrl+t' to toggle pickup/delivery, 'ctrl+n' for a new conversation, 'esc' to go back"
	if m.delivery {
		help += "\n'tab' to switch between message and address"
	}
	b.WriteString(help)
	return b.String()
}

// resultView summarizes the last processed order
func resultView(r *OrderResult) string {
	view := fmt.Sprintf("Order %s: %s", shortID(r.OrderID), r.Status)
	if r.OrderType != "" {
		view += fmt.Sprintf(" (%s)", r.OrderType)
	}
	view += "\n"

	if r.TotalPrice != nil {
		view += successStyle.Render(fmt.Sprintf("Total: $%.2f", *r.TotalPrice)) + "\n"
	}
	for _, it := range r.Items {
		view += fmt.Sprintf("  • %s (%.2fkg) $%.2f\n", it.Name, it.Quantity, it.Price)
	}
	if r.EstimatedPickupTime != nil {
		view += fmt.Sprintf("Ready for pickup at %s\n", r.EstimatedPickupTime.Local().Format(time.Kitchen))
	}
	if r.EstimatedDeliveryTime != nil {
		view += fmt.Sprintf("Estimated delivery at %s\n", r.EstimatedDeliveryTime.Local().Format(time.Kitchen))
	}
	if len(r.MissingIngredients) > 0 {
		view += errorStyle.Render("Missing: "+strings.Join(r.MissingIngredients, ", ")) + "\n"
	}
	for _, e := range r.Errors {
		view += errorStyle.Render(e) + "\n"
	}
	return view
}

func statsView(stats map[string]interface{}) string {
	if len(stats) == 0 {
		return "No orders yet\n"
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%-24s %v\n", k, stats[k]))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func inventoryRows(items []InventoryItem) []table.Row {
	rows := make([]table.Row, len(items))
	for i, it := range items {
		rows[i] = table.Row{it.IngredientID, it.Name, fmt.Sprintf("%.2f", it.Quantity), it.Unit}
	}
	return rows
}

// Custom message types for the tea.Model
type orderResultMsg struct {
	result *OrderResult
}

type inventoryMsg struct {
	items []InventoryItem
}

type statsMsg struct {
	stats map[string]interface{}
}

type errorMsg struct {
	err string
}

func placeOrder(client *ApiClient, req *OrderRequest) tea.Cmd {
	return func() tea.Msg {
		result, err := client.PlaceOrder(req)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error placing order: %v", err)}
		}
		return orderResultMsg{result: result}
	}
}

func fetchInventory(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		items, err := client.GetInventory()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching inventory: %v", err)}
		}
		return inventoryMsg{items: items}
	}
}

func fetchStats(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		stats, err := client.GetStats()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching stats: %v", err)}
		}
		return statsMsg{stats: stats}
	}
}

func main() {
	if ok, err := NewApiClient().CheckHealth(); !ok {
		fmt.Printf("Warning: order intake API is not reachable: %v\n", err)
	}

	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
