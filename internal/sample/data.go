package sample

import (
	"context"
	"io"
	"os"

	"github.com/kbukum/lazyq/pipeline"
	"github.com/kbukum/lazyq/storage"
)

const usersCSV = `UserName;Id;FirstName;LastName;LocationId;CountryCode;Math;History;Science
jdoe;4821;John;Doe;Cordoba;54;78;65;90
mgarcia;5120;Maria;Garcia;Madrid;34;91;88;72
lrossi;5002;Luca;Rossi;Rosario;54;55;70;61
asmith;6100;Anna;Smith;Cordoba;34;84;77;95
pdupont;5300;Pierre;Dupont;Paris;33;69;92;58
csilva;4999;Carla;Silva;Lisbon;351;73;81;66
bmoreno;5701;Bruno;Moreno;cordoba;54;62;59;70
kwong;7002;Kim;Wong;Tokyo;81;99;85;97
`

const locationsCSV = `City;Country;CountryCode;Population
Cordoba;Argentina;54;1391000
Cordoba;Spain;34;325000
Madrid;Spain;34;3223000
Rosario;Argentina;54;1276000
Paris;France;33;2161000
Lisbon;Portugal;351;545000
`

// Users streams the built-in user table.
func Users() *pipeline.Pipeline[User] {
	return ReadUsers(OpenString(usersCSV))
}

// Locations streams the built-in location table.
func Locations() *pipeline.Pipeline[Location] {
	return ReadLocations(OpenString(locationsCSV))
}

// Movies returns the built-in movie list.
func Movies() []Movie {
	return []Movie{
		NewMovie("The Dark Knight", 2008),
		NewMovie("The Shining", 1980),
		NewMovie("The Spoilers", 1942),
		NewMovie("Inception", 2010),
	}
}

// OpenFile returns an Opener reading path from disk.
func OpenFile(path string) Opener {
	return func(context.Context) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// OpenObject returns an Opener downloading path from store.
func OpenObject(store storage.Storage, path string) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		return store.Download(ctx, path)
	}
}
