package hashes

var released = map[string]string{
	"2018.4.36f1": "6cd387d23174",
	"2019.4.31f1": "bd5abf232a62",
	"2019.4.40f1": "ffc62b691db5",
	"2020.3.0f1":  "c7b5465681fb",
	"2020.3.25f1": "9b9180224418",
	"2020.3.30f1": "1fb1bf06830e",
	"2020.3.33f1": "915a7af8b0d5",
	"2020.3.38f1": "8f5fde82e2dc",
	"2020.3.48f1": "b805b124c6b7",
	"2021.3.0f1":  "6eacc8284459",
	"2021.3.16f1": "4016570cf34f",
	"2021.3.45f1": "0da89fac8e79",
	"2022.3.0f1":  "fb119bb0b476",
	"2022.3.10f1": "ff3792e53c62",
	"2022.3.62f1": "4af31df58670",
}
