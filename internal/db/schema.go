package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- THREAD TABLE (raw pasted email conversations)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS thread SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON thread TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON thread TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON thread TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON thread TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON thread TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS thread_user ON thread FIELDS user_id;

    -- ==========================================================================
    -- ANALYSIS TABLE (structured extraction, append-only per thread)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS analysis SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS thread ON analysis TYPE record<thread>;
    DEFINE FIELD IF NOT EXISTS user_id ON analysis TYPE string;
    DEFINE FIELD IF NOT EXISTS stakeholders ON analysis TYPE array<object> FLEXIBLE DEFAULT [];
    DEFINE FIELD IF NOT EXISTS action_items ON analysis TYPE array<object> FLEXIBLE DEFAULT [];
    DEFINE FIELD IF NOT EXISTS deadlines ON analysis TYPE array<object> FLEXIBLE DEFAULT [];
    DEFINE FIELD IF NOT EXISTS key_decisions ON analysis TYPE array<object> FLEXIBLE DEFAULT [];
    DEFINE FIELD IF NOT EXISTS open_questions ON analysis TYPE array<object> FLEXIBLE DEFAULT [];
    DEFINE FIELD IF NOT EXISTS suggested_replies ON analysis TYPE array<object> FLEXIBLE DEFAULT [];
    DEFINE FIELD IF NOT EXISTS suggested_reply ON analysis TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS created_at ON analysis TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS analysis_thread ON analysis FIELDS thread;
    DEFINE INDEX IF NOT EXISTS analysis_user ON analysis FIELDS user_id;

    -- ==========================================================================
    -- TOPIC BATCH (one-per-analysis guard for topic creation)
    -- ==========================================================================
    -- The unique index makes concurrent identify calls race safely: at most
    -- one request creates the batch, everyone else gets "already exists" and
    -- re-reads the stored topics.
    DEFINE TABLE IF NOT EXISTS topic_batch SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS analysis ON topic_batch TYPE record<analysis>;
    DEFINE FIELD IF NOT EXISTS user_id ON topic_batch TYPE string;
    DEFINE FIELD IF NOT EXISTS topic_count ON topic_batch TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS created_at ON topic_batch TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS topic_batch_analysis ON topic_batch FIELDS analysis UNIQUE;

    -- ==========================================================================
    -- RESEARCH TOPIC TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS research_topic SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS analysis ON research_topic TYPE record<analysis>;
    DEFINE FIELD IF NOT EXISTS user_id ON research_topic TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON research_topic TYPE string;
    DEFINE FIELD IF NOT EXISTS is_loading ON research_topic TYPE bool DEFAULT true;
    DEFINE FIELD IF NOT EXISTS created_at ON research_topic TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS research_topic_analysis ON research_topic FIELDS analysis;

    -- ==========================================================================
    -- RESEARCH RESULT TABLE (at most one per topic, writes are upserts)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS research_result SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS topic ON research_result TYPE record<research_topic>;
    DEFINE FIELD IF NOT EXISTS analysis ON research_result TYPE record<analysis>;
    DEFINE FIELD IF NOT EXISTS user_id ON research_result TYPE string;
    DEFINE FIELD IF NOT EXISTS status ON research_result TYPE string DEFAULT "completed";
    DEFINE FIELD IF NOT EXISTS content ON research_result TYPE string;
    DEFINE FIELD IF NOT EXISTS updated_at ON research_result TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS research_result_topic ON research_result FIELDS topic UNIQUE;
    DEFINE INDEX IF NOT EXISTS research_result_analysis ON research_result FIELDS analysis;

    -- ==========================================================================
    -- TODO TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS todo SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON todo TYPE string;
    DEFINE FIELD IF NOT EXISTS analysis ON todo TYPE option<record<analysis>>;
    DEFINE FIELD IF NOT EXISTS thread ON todo TYPE option<record<thread>>;
    DEFINE FIELD IF NOT EXISTS description ON todo TYPE string;
    DEFINE FIELD IF NOT EXISTS assignee ON todo TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS priority ON todo TYPE string DEFAULT "medium";
    DEFINE FIELD IF NOT EXISTS due_date ON todo TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS completed ON todo TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS completed_at ON todo TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS created_at ON todo TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS todo_user ON todo FIELDS user_id;

    -- ==========================================================================
    -- CALENDAR EVENT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS calendar_event SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON calendar_event TYPE string;
    DEFINE FIELD IF NOT EXISTS analysis ON calendar_event TYPE option<record<analysis>>;
    DEFINE FIELD IF NOT EXISTS thread ON calendar_event TYPE option<record<thread>>;
    DEFINE FIELD IF NOT EXISTS title ON calendar_event TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON calendar_event TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS start_time ON calendar_event TYPE datetime;
    DEFINE FIELD IF NOT EXISTS end_time ON calendar_event TYPE datetime;
    DEFINE FIELD IF NOT EXISTS all_day ON calendar_event TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS color ON calendar_event TYPE string DEFAULT "blue";
    DEFINE FIELD IF NOT EXISTS source_type ON calendar_event TYPE string DEFAULT "manual";
    DEFINE FIELD IF NOT EXISTS source_evidence ON calendar_event TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS created_at ON calendar_event TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS calendar_event_user ON calendar_event FIELDS user_id;
`
