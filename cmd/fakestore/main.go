// Command fakestore serves the remote cart contract against an in-memory
// cart, for developing and manually testing cartsync clients without the
// real backend.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/angelmondragon/cartsync/internal/gateway"
	"github.com/angelmondragon/cartsync/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	addr := flag.String("addr", ":8089", "listen address")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "fakestore"})

	svc := newService(map[string]gateway.Product{
		"p-shoe": {
			Name:     "Shoe",
			Price:    100000,
			ImageURL: "https://img.example.test/shoe.jpg",
			Seller:   gateway.Seller{ID: "s1", Username: "ShoeShop"},
		},
		"p-shirt": {
			Name:     "Shirt",
			Price:    45000,
			ImageURL: "https://img.example.test/shirt.jpg",
			Seller:   gateway.Seller{ID: "s2", Username: "ThreadsCo"},
		},
		"p-hat": {
			Name:     "Hat",
			Price:    25500,
			ImageURL: "https://img.example.test/hat.jpg",
			Seller:   gateway.Seller{ID: "s2", Username: "ThreadsCo"},
		},
	})

	logg.Info(logg.WithField(context.Background(), "addr", *addr), "fakestore listening")
	if err := http.ListenAndServe(*addr, newRouter(svc)); err != nil {
		logg.Error(context.Background(), "fakestore server stopped", err)
		os.Exit(1)
	}
}

func newRouter(svc *service) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/cart", svc.listCart)
	router.Post("/cart", svc.createEntry)
	router.Put("/cart/{entryID}", func(w http.ResponseWriter, r *http.Request) {
		svc.updateEntry(w, r, chi.URLParam(r, "entryID"))
	})
	router.Delete("/cart/{entryID}", func(w http.ResponseWriter, r *http.Request) {
		svc.deleteEntry(w, r, chi.URLParam(r, "entryID"))
	})
	return router
}
