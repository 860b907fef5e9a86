package nflscrapr

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
)

const playsCSV = `"","play_id","game_id","home_team","posteam","defteam","game_date","play_type","complete_pass","receiver_player_id","receiver_player_name","rusher_player_id","rusher_player_name"
"1",35,2019090500,"CHI","GB","CHI","2019-09-05","run",0,NA,NA,"00-0033"," A.Jones"
"2",59,2019090500,"CHI","GB","CHI","2019-09-05","pass",1,"00-0031","D.Adams",NA,NA
"3",80,2019090500,"CHI","GB","CHI","2019-09-05","punt",NA,NA,NA,NA,NA
"4",101,2019090500,"CHI",NA,NA,"2019-09-05",NA,NA,NA,NA,NA,NA
`

const rosterCSV = `season,full_player_name,abbr_player_name,gsis_id,birth_date,team,position
2019,Aaron Jones,A.Jones,00-0033,1994-12-02,GB,RB
2019,Davante Adams,D.Adams,00-0031,1992-12-24,GB,WR
`

const gamesCSV = `type,game_id,home_team,away_team,week,season,state_of_game
REG,2019090500,CHI,GB,1,2019,POST
`

func TestDecodePlays(t *testing.T) {
	plays, err := DecodePlays([]byte(playsCSV))
	require.NoError(t, err)
	require.Len(t, plays, 4)

	assert.Equal(t, marketshare.Play{
		PlayID: "35", GameID: "2019090500", GameDate: "2019-09-05", PosTeam: "GB", DefTeam: "CHI",
		PlayType: "run", RusherPlayerID: "00-0033", RusherPlayerName: "A.Jones",
	}, plays[0])
	assert.Equal(t, 1, plays[1].CompletePass)
	assert.Equal(t, "D.Adams", plays[1].ReceiverPlayerName)
	assert.Equal(t, "", plays[1].RusherPlayerID, "NA collapses to empty")
	assert.Equal(t, 0, plays[2].CompletePass)
	assert.Equal(t, "", plays[3].PosTeam)
	assert.Equal(t, "", plays[3].PlayType)
}

func TestDecodeRosterAndGames(t *testing.T) {
	roster, err := DecodeRoster([]byte(rosterCSV))
	require.NoError(t, err)
	assert.Equal(t, []marketshare.RosterEntry{
		{GsisID: "00-0033", Team: "GB", Position: "RB"},
		{GsisID: "00-0031", Team: "GB", Position: "WR"},
	}, roster)

	games, err := DecodeGames([]byte(gamesCSV))
	require.NoError(t, err)
	assert.Equal(t, []marketshare.Game{{GameID: "2019090500", Season: 2019, Week: 1}}, games)
}

func TestDecode_MissingColumnsListed(t *testing.T) {
	_, err := DecodeRoster([]byte("gsis_id,full_player_name\n00-1,X\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Contains(t, err.Error(), "team, position")

	_, err = DecodeGames(nil)
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestDecode_HeaderOnly(t *testing.T) {
	games, err := DecodeGames([]byte("game_id,season,week\n"))
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestDecodeGames_BadWeek(t *testing.T) {
	_, err := DecodeGames([]byte("game_id,season,week\nG1,2019,twelve\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestDecodeGames_FractionalWeekRejected(t *testing.T) {
	_, err := DecodeGames([]byte("game_id,season,week\nG1,2019,12.9\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a whole number")

	games, err := DecodeGames([]byte("game_id,season,week\nG1,2019.0,12.0\n"))
	require.NoError(t, err)
	assert.Equal(t, []marketshare.Game{{GameID: "G1", Season: 2019, Week: 12}}, games)
}

func TestDecodePlays_PandasMissingTokens(t *testing.T) {
	for _, tok := range []string{"None", "NULL", "n/a", "<NA>", "#N/A", "-nan"} {
		in := "play_id,game_id,game_date,posteam,defteam,play_type,complete_pass,receiver_player_id,receiver_player_name,rusher_player_id,rusher_player_name\n" +
			"1,G1,2019-09-05,GB,CHI,pass," + tok + ",00-0031,D.Adams," + tok + "," + tok + "\n"
		plays, err := DecodePlays([]byte(in))
		require.NoError(t, err, tok)
		require.Len(t, plays, 1, tok)
		assert.Equal(t, 0, plays[0].CompletePass, tok)
		assert.Equal(t, "", plays[0].RusherPlayerID, tok)
	}
}

func TestFetch_HTTP(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing.csv" {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, gamesCSV)
	}))
	defer srv.Close()

	f := &Fetcher{HTTP: srv.Client()}
	b, err := f.Fetch(context.Background(), srv.URL+"/games.csv")
	require.NoError(t, err)
	assert.Equal(t, gamesCSV, string(b))
	assert.Equal(t, defaultUserAgent, gotUA)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

type fakeS3 struct {
	objects map[string]string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func TestFetch_S3(t *testing.T) {
	f := &Fetcher{S3: &fakeS3{objects: map[string]string{"raw/nflscrapr/games.csv": gamesCSV}}}

	b, err := f.Fetch(context.Background(), "s3://raw/nflscrapr/games.csv")
	require.NoError(t, err)
	assert.Equal(t, gamesCSV, string(b))

	_, err = f.Fetch(context.Background(), "s3://raw")
	assert.Error(t, err)

	_, err = (&Fetcher{}).Fetch(context.Background(), "s3://raw/games.csv")
	assert.Error(t, err)
}

func TestLoad_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}
	loc := Locations{
		Plays:  write("pbp.csv", playsCSV),
		Roster: "file://" + write("roster.csv", rosterCSV),
		Games:  write("games.csv", gamesCSV),
	}

	tables, err := Load(context.Background(), &Fetcher{}, loc)
	require.NoError(t, err)
	assert.Len(t, tables.Plays, 4)
	assert.Len(t, tables.Roster, 2)
	assert.Len(t, tables.Games, 1)

	loc.Games = filepath.Join(dir, "absent.csv")
	_, err = Load(context.Background(), &Fetcher{}, loc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load games")
}

func TestLoad_FeedsPipeline(t *testing.T) {
	tables := marketshare.Tables{}
	var err error
	tables.Plays, err = DecodePlays([]byte(playsCSV))
	require.NoError(t, err)
	tables.Roster, err = DecodeRoster([]byte(rosterCSV))
	require.NoError(t, err)
	tables.Games, err = DecodeGames([]byte(gamesCSV))
	require.NoError(t, err)

	rep, err := marketshare.Build(tables, marketshare.Options{FocusWeek: 1, TopRBCount: 20})
	require.NoError(t, err)
	require.Len(t, rep.Views.RBShareWeek, 1)
	assert.Equal(t, "A.Jones", rep.Views.RBShareWeek[0].PlayerName)
	assert.InDelta(t, 0.5, rep.Views.RBShareWeek[0].RBMarketShare, 1e-12)
	require.Len(t, rep.Views.RecShareWeek, 1)
	assert.InDelta(t, 1.0, rep.Views.RecShareWeek[0].RecMarketShare, 1e-12)
}
