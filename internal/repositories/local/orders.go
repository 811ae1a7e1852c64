package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hwdepot/rigbuilder/internal/orders"
)

var ErrOrderNotFound = errors.New("order not found")

// LocalOrderArchive persists placed orders as JSON files under BaseDir.
type LocalOrderArchive struct {
	BaseDir string
}

// Save writes the order to disk using its ID as the filename.
func (rep *LocalOrderArchive) Save(order orders.Order) error {
	if rep.BaseDir == "" {
		return errors.New("base directory is not configured")
	}
	if order.ID == "" {
		return errors.New("order id is required")
	}

	if err := os.MkdirAll(rep.BaseDir, 0o755); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(rep.BaseDir, order.ID+".json")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("order %s already archived", order.ID)
	}
	return os.WriteFile(path, payload, 0o644)
}

// Get returns the order with the provided ID.
func (rep *LocalOrderArchive) Get(orderID string) (orders.Order, error) {
	if orderID == "" || strings.ContainsAny(orderID, `/\`) {
		return orders.Order{}, fmt.Errorf("invalid order id %q", orderID)
	}
	return rep.loadOrder(filepath.Join(rep.BaseDir, orderID+".json"))
}

// List returns every archived order, oldest first.
func (rep *LocalOrderArchive) List() ([]orders.Order, error) {
	entries, err := os.ReadDir(rep.BaseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var placed []orders.Order
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		order, err := rep.loadOrder(filepath.Join(rep.BaseDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		placed = append(placed, order)
	}

	sort.Slice(placed, func(i, j int) bool { return placed[i].CreatedAt.Before(placed[j].CreatedAt) })
	return placed, nil
}

func (rep *LocalOrderArchive) loadOrder(path string) (orders.Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return orders.Order{}, ErrOrderNotFound
		}
		return orders.Order{}, err
	}

	var order orders.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return orders.Order{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return order, nil
}
