package demo

import (
	"fmt"

	"github.com/RCDNC/swipedeck/internal/domain/model"
)

// UserInterests are the interests of the synthetic demo user. Mutual interests
// of every demo candidate are computed against this list, in this order.
var UserInterests = []string{"Café", "Viagens", "Música", "Cinema", "Trilhas"}

type profile struct {
	candidate model.Candidate
	likesBack bool
}

var catalog = []profile{
	{likesBack: true, candidate: model.Candidate{
		ID: "1", DisplayName: "Ana", Age: 24, Gender: "female", Location: "São Paulo, SP", DistanceKM: 0.6,
		Bio: "Apaixonada por cafés especiais e livros de bolso.", Interests: []string{"Café", "Leitura", "Yoga"},
		Verified: true, Online: true, Rating: 4.8, ProfileCompletion: 95, MutualConnections: 2,
	}},
	{likesBack: false, candidate: model.Candidate{
		ID: "2", DisplayName: "Bruno", Age: 29, Gender: "male", Location: "São Paulo, SP", DistanceKM: 3.2,
		Bio: "Engenheiro de dia, baterista à noite.", Interests: []string{"Música", "Games", "Churrasco"},
		Rating: 4.1, ProfileCompletion: 80,
	}},
	{likesBack: true, candidate: model.Candidate{
		ID: "3", DisplayName: "Carla", Age: 27, Gender: "female", Location: "Santo André, SP", DistanceKM: 14.7,
		Bio: "Trilha no fim de semana, série no domingo.", Interests: []string{"Trilhas", "Cinema", "Fotografia"},
		Verified: true, Premium: true, Rating: 4.6, ProfileCompletion: 100, MutualConnections: 5,
	}},
	{likesBack: false, candidate: model.Candidate{
		ID: "4", DisplayName: "Diego", Age: 33, Gender: "male", Location: "Osasco, SP", DistanceKM: 18.1,
		Bio: "Cozinho melhor do que falo.", Interests: []string{"Culinária", "Vinhos"},
		Online: true, Rating: 3.9, ProfileCompletion: 65,
	}},
	{likesBack: true, candidate: model.Candidate{
		ID: "5", DisplayName: "Elis", Age: 22, Gender: "nonbinary", Location: "São Paulo, SP", DistanceKM: 2.4,
		Bio: "Ilustradora e colecionadora de vinis.", Interests: []string{"Arte", "Música", "Vinil"},
		Verified: true, Rating: 4.7, ProfileCompletion: 90, MutualConnections: 1,
	}},
	{likesBack: false, candidate: model.Candidate{
		ID: "6", DisplayName: "Felipe", Age: 31, Gender: "male", Location: "Guarulhos, SP", DistanceKM: 22.9,
		Bio: "Corredor amador, maratonista em treinamento.", Interests: []string{"Corrida", "Viagens"},
		Rating: 4.2, ProfileCompletion: 75,
	}},
	{likesBack: true, candidate: model.Candidate{
		ID: "7", DisplayName: "Gabriela", Age: 26, Gender: "female", Location: "São Paulo, SP", DistanceKM: 5.5,
		Bio: "Bióloga, adoro praia e documentários.", Interests: []string{"Praia", "Cinema", "Natureza"},
		Online: true, Premium: true, Rating: 4.9, ProfileCompletion: 100, MutualConnections: 3,
	}},
	{likesBack: false, candidate: model.Candidate{
		ID: "8", DisplayName: "Heitor", Age: 35, Gender: "male", Location: "São Bernardo, SP", DistanceKM: 16.3,
		Bio: "Pai de pet, fã de jazz.", Interests: []string{"Jazz", "Cachorros"},
		Verified: true, Rating: 4.0, ProfileCompletion: 70,
	}},
	{likesBack: true, candidate: model.Candidate{
		ID: "9", DisplayName: "Isabela", Age: 30, Gender: "female", Location: "São Paulo, SP", DistanceKM: 7.8,
		Bio: "Arquiteta que coleciona mapas antigos.", Interests: []string{"Arquitetura", "Viagens", "Trilhas"},
		Rating: 4.5, ProfileCompletion: 85,
	}},
	{likesBack: true, candidate: model.Candidate{
		ID: "10", DisplayName: "Júlia", Age: 28, Gender: "female", Location: "São Paulo, SP", DistanceKM: 1.3,
		Bio: "Barista nas horas vagas, mochileira sempre.", Interests: []string{"Viagens", "Café", "Yoga"},
		Verified: true, Online: true, Rating: 4.9, ProfileCompletion: 100, MutualConnections: 4,
	}},
	{likesBack: false, candidate: model.Candidate{
		ID: "11", DisplayName: "Lucas", Age: 32, Gender: "male", Location: "Barueri, SP", DistanceKM: 25.0,
		Bio: "Surfista de fim de semana.", Interests: []string{"Surfe", "Praia"},
		Rating: 3.8, ProfileCompletion: 60,
	}},
	{likesBack: true, candidate: model.Candidate{
		ID: "12", DisplayName: "Marina", Age: 25, Gender: "female", Location: "São Paulo, SP", DistanceKM: 4.1,
		Bio: "Tocando violão e procurando parceria para shows.", Interests: []string{"Música", "Shows", "Café"},
		Online: true, Rating: 4.4, ProfileCompletion: 88,
	}},
}

func photosFor(id string) []string {
	return []string{
		fmt.Sprintf("https://picsum.photos/seed/swipedeck-%s-1/600/800", id),
		fmt.Sprintf("https://picsum.photos/seed/swipedeck-%s-2/600/800", id),
	}
}

func mutualInterests(interests []string) []string {
	out := make([]string, 0, len(UserInterests))
	for _, mine := range UserInterests {
		for _, theirs := range interests {
			if theirs == mine {
				out = append(out, mine)
				break
			}
		}
	}
	return out
}

func lookup(id string) (profile, bool) {
	for _, p := range catalog {
		if p.candidate.ID == id {
			return p, true
		}
	}
	return profile{}, false
}
